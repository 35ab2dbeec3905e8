package livechart

import (
	"context"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/minor-industries/livechart/assets"
	"github.com/minor-industries/livechart/messages"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"io/fs"
	"net"
	"net/http"
	"nhooyr.io/websocket"
	"time"
)

const (
	scriptName = "livechart.js"
	msgpackSrc = "https://unpkg.com/@msgpack/msgpack@2.8.0/dist.es5+umd/msgpack.min.js"
)

func (v *Viewer) setupServer() error {
	r := v.server
	r.Use(gin.Recovery(), v.accessLog())

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/index.html")
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	r.GET("/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := v.dashboard.RenderPage(c.Writer, v.title, msgpackSrc, "/"+scriptName); err != nil {
			v.log.Error("render page", zap.Error(err))
			c.Status(http.StatusInternalServerError)
		}
	})

	v.StaticFiles(assets.FS,
		scriptName, "application/javascript",
	)

	r.GET("/ws", v.handleSocket)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(v.gatherer, promhttp.HandlerOpts{})))

	return nil
}

func (v *Viewer) handleSocket(c *gin.Context) {
	ctx := c.Request.Context()
	log := v.log.With(zap.String("remote", c.Request.RemoteAddr))

	conn, wsErr := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if wsErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, wsErr)
		return
	}

	defer func() {
		_ = conn.Close(websocket.StatusInternalError, "Closed unexpectedly")
	}()

	_, reqBytes, err := conn.Read(ctx)
	if err != nil {
		log.Debug("ws read error", zap.Error(err))
		return
	}
	ctx = conn.CloseRead(ctx)

	writeErr := func(err error) {
		_ = writeData(ctx, conn, &messages.Data{Error: err.Error()})
	}

	var req messages.Request
	if err := json.Unmarshal(reqBytes, &req); err != nil {
		writeErr(errors.Wrap(err, "unmarshal json"))
		return
	}

	sub, err := newSubscription(v.dashboard, &req)
	if err != nil {
		writeErr(errors.Wrap(err, "subscribe"))
		return
	}

	err = sub.run(ctx, v, func(data *messages.Data) error {
		return writeData(ctx, conn, data)
	})
	if err != nil && ctx.Err() == nil {
		log.Info("subscription ended", zap.Error(err))
	}
}

func writeData(ctx context.Context, conn *websocket.Conn, data *messages.Data) error {
	binmsg, err := data.MarshalMsg(nil)
	if err != nil {
		return errors.Wrap(err, "marshal msg")
	}

	if err := conn.Write(ctx, websocket.MessageBinary, binmsg); err != nil {
		return errors.Wrap(err, "write binary")
	}

	return nil
}

func (v *Viewer) accessLog() gin.HandlerFunc {
	log := v.log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// RunServer serves the page on address until ctx is done.
func (v *Viewer) RunServer(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:    address,
		Handler: v.server,
		// page sockets are hijacked and outlive Shutdown; tie them to ctx instead
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	v.log.Info("serving dashboard", zap.String("address", address))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "run")
	}
	return nil
}

func (v *Viewer) StaticFiles(fsys fs.FS, files ...string) {
	for i := 0; i < len(files); i += 2 {
		name := files[i]
		ct := files[i+1]
		v.server.GET("/"+name, func(c *gin.Context) {
			content, err := fs.ReadFile(fsys, name)
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, ct, content)
		})
	}
}
