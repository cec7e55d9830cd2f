package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/nergy-se/heatprice/pkg/config"
	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/controller"
	"github.com/nergy-se/heatprice/pkg/metrics"
	"github.com/nergy-se/heatprice/pkg/mqtt"
	"github.com/nergy-se/heatprice/pkg/price"
	"github.com/nergy-se/heatprice/pkg/sensor"
	"github.com/nergy-se/heatprice/pkg/state"
	"github.com/nergy-se/heatprice/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type App struct {
	wg     *sync.WaitGroup
	config *config.CliConfig
	core   control.CoreConfig
	now    func() time.Time

	fetcher    price.Fetcher
	prices     *price.SharedPriceCache
	sensor     sensor.Sensor
	controller controller.Controller
	publisher  mqtt.Publisher
	metrics    *metrics.Metrics
	registry   *prometheus.Registry
	state      *state.Cache

	status      status.Status
	statusMutex sync.Mutex
}

func New(config *config.CliConfig) *App {
	return &App{
		wg:       &sync.WaitGroup{},
		config:   config,
		now:      utcNow,
		registry: prometheus.NewRegistry(),
		state:    &state.Cache{},
	}
}

// Start validates the configuration, loads the initial prices and starts the
// price and measurement loops. The loops stop when ctx is done.
func (a *App) Start(ctx context.Context) error {
	a.setStatus(status.Initializing)
	err := a.config.Validate()
	if err != nil {
		return err
	}
	a.core, err = a.config.CoreConfig()
	if err != nil {
		return err
	}

	err = a.setup()
	if err != nil {
		a.close()
		return err
	}

	a.prices, err = price.FetchSharedPriceCache(ctx, a.fetcher, a.config.PriceURL, a.now())
	if err != nil {
		logrus.Errorf("error fetching initial electricity prices, will retry: %s", err)
		a.prices = price.NewSharedPriceCache(a.fetcher, a.config.PriceURL)
	}

	if a.config.MetricsListen != "" {
		a.serveMetrics(ctx)
	}

	a.wg.Add(2)
	go a.priceLoop(ctx)
	go a.measurementLoop(ctx)
	return nil
}

// setup builds the collaborators that were not provided already. Only
// successfully opened ones are kept so close can release them.
func (a *App) setup() error {
	if a.fetcher == nil {
		if err := a.config.LoadToken(); err != nil {
			return fmt.Errorf("error loading token: %w", err)
		}
		a.fetcher = price.NewHTTPFetcher(a.config.Token())
	}
	if a.sensor == nil {
		s, err := newSensor(a.config)
		if err != nil {
			return err
		}
		a.sensor = s
	}
	if a.controller == nil {
		c, err := newController(a.config)
		if err != nil {
			return err
		}
		a.controller = c
	}
	if a.publisher == nil {
		p, err := newPublisher(a.config)
		if err != nil {
			return err
		}
		a.publisher = p
	}
	if a.metrics == nil {
		a.metrics = metrics.New(a.registry)
	}
	return nil
}

// Wait blocks until the loops have stopped and releases the devices.
func (a *App) Wait() {
	a.wg.Wait()
	a.close()
}

func (a *App) close() {
	if a.controller != nil {
		if err := a.controller.Close(); err != nil {
			logrus.Errorf("error closing controller: %s", err)
		}
	}
	if c, ok := a.sensor.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logrus.Errorf("error closing sensor: %s", err)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logrus.Errorf("error closing publisher: %s", err)
		}
	}
}

func (a *App) Status() status.Status {
	a.statusMutex.Lock()
	defer a.statusMutex.Unlock()
	return a.status
}

func (a *App) setStatus(s status.Status) {
	a.statusMutex.Lock()
	changed := a.status != s
	a.status = s
	a.statusMutex.Unlock()
	if changed {
		c := s.Color()
		logrus.WithFields(logrus.Fields{"r": c.R, "g": c.G, "b": c.B}).Debugf("status: %s", s)
	}
}

// State returns the outcome of the latest measurement cycle.
func (a *App) State() (state.Snapshot, bool) {
	return a.state.Get()
}

func (a *App) priceLoop(ctx context.Context) {
	defer a.wg.Done()
	delay := calculateNextDelay(a.now())
	timer := time.NewTimer(delay)
	defer timer.Stop()
	logrus.Debug("scheduling first price update in ", delay)
	for {
		select {
		case <-timer.C:
			a.updatePrices(ctx)
			timer.Reset(a.config.PriceUpdateInterval)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) updatePrices(ctx context.Context) {
	action, err := a.prices.MaybeUpdate(ctx, a.now())
	a.metrics.PriceUpdate(action, err)
	if err != nil {
		logrus.Errorf("error updating electricity prices: %s", err)
	}
}

func (a *App) measurementLoop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.config.MeasurementInterval)
	defer ticker.Stop()
	for {
		if err := a.Tick(ctx); err != nil {
			logrus.Error(err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs one measurement cycle: read the temperature, decide the set point
// from the current price, apply and publish it.
func (a *App) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := a.now()
	a.setStatus(status.Collecting)

	temperature, err := a.sensor.Temperature()
	if err != nil {
		a.metrics.MeasurementError()
		a.setStatus(status.MissingData)
		return fmt.Errorf("error reading temperature: %w", err)
	}

	currentPrice, fromCache := a.prices.CurrentPrice(now)
	if !fromCache {
		currentPrice = a.config.Fallback()
		logrus.WithField("price", currentPrice).Warn("no electricity price for current hour, using fallback")
	}

	setPoint, err := control.DesiredState(temperature, a.core, currentPrice)
	if err != nil {
		a.setStatus(status.MissingData)
		return err
	}

	logrus.WithFields(logrus.Fields{
		"temperature": temperature,
		"price":       currentPrice,
		"setPoint":    setPoint,
	}).Debug("measurement")

	var errs []error
	if err := a.controller.Apply(setPoint); err != nil {
		errs = append(errs, fmt.Errorf("error applying set point: %w", err))
	}

	result := status.Ready
	if s, ok := a.prices.Status(); ok {
		result = s
	}
	if !fromCache {
		result = status.MissingData
	}

	snapshot := state.Snapshot{
		Time:           now,
		Temperature:    temperature,
		Price:          currentPrice,
		PriceFromCache: fromCache,
		SetPoint:       setPoint,
		Status:         result,
	}
	a.state.Set(snapshot)
	a.metrics.Observe(snapshot)

	if a.publisher != nil {
		if err := a.publisher.PublishState(snapshot); err != nil {
			errs = append(errs, fmt.Errorf("error publishing state: %w", err))
		}
	}

	a.setStatus(result)
	return errors.Join(errs...)
}

func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.config.MetricsListen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("metrics listening on %s", a.config.MetricsListen)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("error shutting down metrics server: %s", err)
		}
	}()
}
