// Package server exposes the read-only HTTP API the dashboard and the
// match viewer consume: metric artifacts straight off disk and single L1
// documents out of the document store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lolmetrics/internal/config"
	"lolmetrics/internal/metrics"
	"lolmetrics/internal/store"
)

// filteredReader is the slice of the store the server reads.
type filteredReader interface {
	FindFilteredByID(ctx context.Context, name, matchID string) (*store.FilteredMatchDoc, error)
}

// Server serves artifacts and L1 documents. It never writes anything.
type Server struct {
	cfg     config.ServerConfig
	views   filteredReader
	dataDir string

	// metric numbers by name, from the catalogue.
	numbers map[string]int
}

// New builds a server over the artifact tree and an open store.
func New(cfg config.ServerConfig, views filteredReader, dataDir string) *Server {
	numbers := make(map[string]int)
	for _, m := range metrics.Catalogue() {
		numbers[m.Name] = m.Number
	}
	return &Server{cfg: cfg, views: views, dataDir: dataDir, numbers: numbers}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(s.cfg.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	pprof.Register(r)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api/pools/:pool/queues/:queue/min/:min/metrics/:name", s.getArtifact)
	r.GET("/api/matches/:queue/:min/:pool/:id", s.getMatch)
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server: listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("server: shutting down")
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// getArtifact streams one metric artifact file. An optional start/end
// query pair selects a windowed recomputation instead of the canonical
// file; a missing file means not yet computed.
func (s *Server) getArtifact(c *gin.Context) {
	pool, name := c.Param("pool"), c.Param("name")
	queue, err := strconv.Atoi(c.Param("queue"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "queue must be numeric"})
		return
	}
	minFriends, err := strconv.Atoi(c.Param("min"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min must be numeric"})
		return
	}

	number, ok := s.numbers[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown metric %q", name)})
		return
	}

	w := metrics.Window{Start: c.Query("start"), End: c.Query("end")}
	if _, _, err := w.Bounds(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path := metrics.ArtifactPath(s.dataDir, pool, queue, minFriends, number, name, w)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact not computed"})
			return
		}
		log.WithError(err).WithField("path", path).Error("server: artifact read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "artifact read failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// getMatch returns one L1 document, full payload included.
func (s *Server) getMatch(c *gin.Context) {
	pool, matchID := c.Param("pool"), c.Param("id")
	queue, err := strconv.Atoi(c.Param("queue"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "queue must be numeric"})
		return
	}
	minFriends, err := strconv.Atoi(c.Param("min"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min must be numeric"})
		return
	}

	name := store.L1Collection(queue, minFriends, pool)
	doc, err := s.views.FindFilteredByID(c.Request.Context(), name, matchID)
	if err != nil {
		log.WithError(err).WithField("match", matchID).Error("server: match lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "match lookup failed"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found in view"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// requestLogger logs one line per request through logrus.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("server: request")
	}
}
