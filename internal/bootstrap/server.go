package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skopintsev/farebook/api"
	"github.com/skopintsev/farebook/config"
	"github.com/skopintsev/farebook/internal/service/booking"
	"github.com/skopintsev/farebook/internal/service/flights"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) error {
	router := gin.New()
	router.Use(gin.Recovery())

	api.NewFlightHandler(flightSvc).Register(router.Group("/flights"))
	api.NewBookingHandler(bookingSvc, cfg.Booking.PaymentSuccessRate).Register(router.Group("/bookings"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
