// Package loadtest drives concurrent shoppers against a running storefront
// API and reports throughput and latency.
package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kieracarman/bakery-storefront/internal/models"
)

// Tester runs shopping sessions against baseURL
type Tester struct {
	baseURL     string
	client      *http.Client
	concurrency int
	duration    time.Duration
	method      models.PaymentMethod
}

// Results summarizes a run. Only checkout requests are counted.
type Results struct {
	RequestCount    int
	SuccessCount    int
	RateLimited     int
	FailureCount    int
	TotalDuration   time.Duration
	MinResponseTime time.Duration
	MaxResponseTime time.Duration
	AvgResponseTime time.Duration
	RPS             float64
}

// SuccessRate is the share of successful checkouts in percent
func (r Results) SuccessRate() float64 {
	if r.RequestCount == 0 {
		return 0
	}
	return 100 * float64(r.SuccessCount) / float64(r.RequestCount)
}

// New creates a tester with 10 shoppers for 10 seconds paying cash
func New(baseURL string, client *http.Client) *Tester {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Tester{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      client,
		concurrency: 10,
		duration:    10 * time.Second,
		method:      models.PaymentCash,
	}
}

// SetConcurrency sets the number of concurrent shoppers
func (t *Tester) SetConcurrency(n int) {
	t.concurrency = n
}

// SetDuration sets how long shoppers keep placing orders
func (t *Tester) SetDuration(d time.Duration) {
	t.duration = d
}

// SetPaymentMethod picks card or cash; pix needs a confirm step and is
// handled transparently
func (t *Tester) SetPaymentMethod(m models.PaymentMethod) {
	t.method = m
}

type outcome struct {
	status       int
	err          error
	responseTime time.Duration
}

// Run starts the shoppers and blocks until the duration passes or ctx ends
func (t *Tester) Run(ctx context.Context) (*Results, error) {
	products, err := t.products(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("storefront has no products")
	}

	ctx, cancel := context.WithTimeout(ctx, t.duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	outcomes := make(chan outcome, t.concurrency*16)

	for i := 0; i < t.concurrency; i++ {
		wg.Add(1)
		go func(shopper int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(shopper)))

			for ctx.Err() == nil {
				// fill the shared cart with 1-3 random products
				for n := 1 + rng.Intn(3); n > 0; n-- {
					p := products[rng.Intn(len(products))]
					t.post(ctx, "/cart/items", map[string]string{"productId": p.ID})
				}

				requestStart := time.Now()
				status, err := t.checkout(ctx, shopper)
				if ctx.Err() != nil {
					return
				}
				outcomes <- outcome{status: status, err: err, responseTime: time.Since(requestStart)}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	res := &Results{MinResponseTime: time.Hour}
	var total time.Duration
	for o := range outcomes {
		res.RequestCount++
		switch {
		case o.err != nil:
			res.FailureCount++
		case o.status == http.StatusTooManyRequests:
			res.RateLimited++
		case o.status == http.StatusCreated:
			res.SuccessCount++
		default:
			res.FailureCount++
		}
		total += o.responseTime
		res.MinResponseTime = min(res.MinResponseTime, o.responseTime)
		res.MaxResponseTime = max(res.MaxResponseTime, o.responseTime)
	}

	res.TotalDuration = time.Since(start)
	if res.RequestCount > 0 {
		res.AvgResponseTime = total / time.Duration(res.RequestCount)
	} else {
		res.MinResponseTime = 0
	}
	res.RPS = float64(res.RequestCount) / res.TotalDuration.Seconds()
	return res, nil
}

func (t *Tester) checkout(ctx context.Context, shopper int) (int, error) {
	body := map[string]any{
		"customer": models.CustomerInfo{
			Name:    fmt.Sprintf("Shopper %d", shopper),
			Email:   fmt.Sprintf("shopper%d@example.com", shopper),
			Phone:   "11 90000-0000",
			Address: "Rua do Teste, 1",
		},
		"paymentMethod": t.method,
	}
	status, err := t.post(ctx, "/checkout", body)
	if err != nil || t.method != models.PaymentPix || status != http.StatusAccepted {
		return status, err
	}
	return t.post(ctx, "/checkout/pix/confirm", nil)
}

func (t *Tester) products(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/products", nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer resp.Body.Close()

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (t *Tester) post(ctx context.Context, path string, v any) (int, error) {
	var body []byte
	if v != nil {
		var err error
		if body, err = json.Marshal(v); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
