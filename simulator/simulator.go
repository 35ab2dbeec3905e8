// Package simulator serves fake telemetry in the batch format the dashboard
// consumes: sixteen analog inputs read as int16 and converted to physical
// values with a per-channel quadratic calibration.
package simulator

import (
	"context"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/minor-industries/livechart/internal/config"
	"github.com/minor-industries/livechart/messages"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"math"
	"math/rand"
	"net"
	"net/http"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
	"sync"
	"time"
)

const (
	NumAnalogInputs = 16
	DefaultListen   = config.DefaultSimulateListen
	DefaultInterval = config.DefaultSimulateInterval
)

// Calibration converts a raw reading: phy = raw*A^2 + raw*B + C.
type Calibration struct {
	A, B, C float64
}

func (c Calibration) Apply(raw int16) float64 {
	r := float64(raw)
	return r*c.A*c.A + r*c.B + c.C
}

var Identity = Calibration{A: 0, B: 1, C: 0}

// Reader produces the raw reading of channel ch at t seconds since start.
type Reader func(ch int, t float64) int16

// SineReader is the default Reader: a slow sine per channel with a little noise.
func SineReader(ch int, t float64) int16 {
	v := 8000*math.Sin(2*math.Pi*t/10+float64(ch)*math.Pi/8) + rand.NormFloat64()*50
	return int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
}

type Config struct {
	Interval time.Duration
	Reader   Reader

	// Calibration per analog input; missing entries use Identity.
	Calibration map[int]Calibration
}

type Simulator struct {
	cfg   Config
	log   *zap.Logger
	start time.Time

	mu sync.Mutex
}

func New(cfg Config, log *zap.Logger) *Simulator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Reader == nil {
		cfg.Reader = SineReader
	}
	return &Simulator{
		cfg:   cfg,
		log:   log,
		start: time.Now(),
	}
}

func (s *Simulator) calibration(ch int) Calibration {
	if c, ok := s.cfg.Calibration[ch]; ok {
		return c
	}
	return Identity
}

// Batch samples every input at now.
func (s *Simulator) Batch(now time.Time) *messages.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := now.Sub(s.start).Seconds()

	row := map[string]any{"time": t}
	label := map[string]string{"time": "Time"}
	unit := map[string]string{"time": "s"}

	for ch := 0; ch < NumAnalogInputs; ch++ {
		raw := s.cfg.Reader(ch, t)
		rawName := fmt.Sprintf("ai_raw_%d", ch)
		phyName := fmt.Sprintf("ai_phy_%d", ch)

		row[rawName] = int(raw)
		row[phyName] = s.calibration(ch).Apply(raw)
		label[rawName] = fmt.Sprintf("CH %d raw", ch)
		label[phyName] = fmt.Sprintf("CH %d", ch)
		unit[rawName] = "i16"
		unit[phyName] = "V"
	}

	return &messages.Batch{
		Data:  []map[string]any{row},
		Label: label,
		Unit:  unit,
	}
}

// Serve streams batches to one accepted socket until it fails or ctx is done.
func (s *Simulator) Serve(ctx context.Context, conn *websocket.Conn) error {
	ctx = conn.CloseRead(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := wsjson.Write(ctx, conn, s.Batch(now)); err != nil {
				return errors.Wrap(err, "write batch")
			}
		}
	}
}

func (s *Simulator) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusGoingAway, "simulator stopped")
		}()

		s.log.Info("client connected", zap.String("remote", c.Request.RemoteAddr))
		err = s.Serve(c.Request.Context(), conn)
		s.log.Info("client disconnected", zap.String("remote", c.Request.RemoteAddr), zap.Error(err))
	})

	return r
}

// Run listens on address until ctx is done.
func (s *Simulator) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:    address,
		Handler: s.Engine(),
		// hijacked sockets outlive Shutdown; tie them to ctx instead
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("simulator listening", zap.String("address", address))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen")
	}
	return nil
}
