package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kieracarman/bakery-storefront/internal/loadtest"
	"github.com/kieracarman/bakery-storefront/internal/models"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "storefront base URL")
	users := flag.Int("users", 10, "concurrent shoppers")
	duration := flag.Duration("duration", 10*time.Second, "test duration")
	method := flag.String("method", "cash", "payment method: card, cash or pix")
	flag.Parse()

	pm, err := models.ParsePaymentMethod(*method)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lt := loadtest.New(*url, nil)
	lt.SetConcurrency(*users)
	lt.SetDuration(*duration)
	lt.SetPaymentMethod(pm)

	fmt.Printf("Running %d shoppers against %s for %v...\n", *users, *url, *duration)
	res, err := lt.Run(ctx)
	if err != nil {
		log.Fatalf("load test: %v", err)
	}

	fmt.Printf("- Checkouts: %d\n", res.RequestCount)
	fmt.Printf("- Success rate: %.2f%%\n", res.SuccessRate())
	fmt.Printf("- Rate limited: %d\n", res.RateLimited)
	fmt.Printf("- Failures: %d\n", res.FailureCount)
	fmt.Printf("- Throughput: %.2f checkouts/second\n", res.RPS)
	fmt.Printf("- Response time: min %v, avg %v, max %v\n", res.MinResponseTime, res.AvgResponseTime, res.MaxResponseTime)
}
