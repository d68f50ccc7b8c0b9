// Package restserver serves the ephemeris and tracking API over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/heliograph/heliograph/internal/log"
	"github.com/heliograph/heliograph/internal/tracker"
	"github.com/heliograph/heliograph/pkg/config"
	"github.com/heliograph/heliograph/pkg/observer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	httpData  config.HTTPData
	locations map[string]config.LocationData
	observers map[string]*observer.Observer
	names     []string // configured order, for stable listings
	tracker   *tracker.Tracker
	Server    http.Server
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, trk *tracker.Tracker, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:       ctx,
		wg:        wg,
		httpData:  cfg.HTTP,
		locations: make(map[string]config.LocationData),
		observers: make(map[string]*observer.Observer),
		tracker:   trk,
		logger:    logger,
	}

	if len(cfg.Locations) == 0 {
		return nil, fmt.Errorf("no locations configured - at least one location must be configured for the REST server")
	}

	for _, loc := range cfg.Locations {
		o, err := newObserver(loc)
		if err != nil {
			return nil, err
		}
		ctrl.locations[loc.Name] = loc
		ctrl.observers[loc.Name] = o
		ctrl.names = append(ctrl.names, loc.Name)
	}

	if ctrl.httpData.ListenAddr == "" {
		logger.Info("http.listen_addr not provided; defaulting to :8080")
		ctrl.httpData.ListenAddr = ":8080"
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = ctrl.httpData.ListenAddr
	ctrl.Server.Handler = router

	return ctrl, nil
}

// newObserver builds the observer for a configured location.
func newObserver(loc config.LocationData) (*observer.Observer, error) {
	horizon := observer.HorizonModel{AboveGround: loc.AboveGround}
	if ob := loc.EastObstruction; ob != nil {
		horizon.East = &observer.Obstruction{Distance: ob.Distance, Height: ob.Height}
	}
	if ob := loc.WestObstruction; ob != nil {
		horizon.West = &observer.Obstruction{Distance: ob.Distance, Height: ob.Height}
	}
	o, err := observer.New(loc.Latitude, loc.Longitude, loc.TimeZone, horizon)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", loc.Name, err)
	}
	return o, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/locations", c.handlers.GetLocations)
	router.HandleFunc("/api/subjects", c.handlers.GetSubjects)
	router.HandleFunc("/api/{location}/ephemeris", c.handlers.GetEphemeris)
	router.HandleFunc("/api/{location}/position", c.handlers.GetPosition)
	router.HandleFunc("/api/{location}/phase", c.handlers.GetPhase)
	router.HandleFunc("/api/{location}/subjects", c.handlers.GetLocationSubjects)

	router.Handle("/metrics", promhttp.Handler())

	return router
}
