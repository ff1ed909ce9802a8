package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/R3E-Network/chromelogger/internal/logging"
	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
	"github.com/R3E-Network/chromelogger/pkg/chromelogger/zapconsole"
)

type server struct {
	logger  *logging.Logger
	zap     *zap.Logger
	service string
}

type customer struct {
	Name   string
	Email  string `chromelogger:"redact"`
	Orders []*order
}

type lineItem struct {
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type order struct {
	ID         int
	Customer   *customer
	Items      []lineItem
	PlacedAt   time.Time
	PaymentKey chromelogger.Secret
	Internal   string `chromelogger:"-"`
	note       string
}

func sampleOrder() *order {
	c := &customer{Name: "Ada Lovelace", Email: "ada@example.com"}
	o := &order{
		ID:       1001,
		Customer: c,
		Items: []lineItem{
			{SKU: "NB-01", Quantity: 2, Price: 12.5},
			{SKU: "PEN-07", Quantity: 10, Price: 1.2},
		},
		PlacedAt:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		PaymentKey: "pk_live_51H",
		Internal:   "warehouse-7",
		note:       "gift wrap",
	}
	c.Orders = []*order{o}
	return o
}

func (s *server) handleOrder(w http.ResponseWriter, r *http.Request) {
	console := chromelogger.FromContext(r.Context())
	o := sampleOrder()

	console.GroupCollapsed("order", o.ID)
	console.Log(o)
	console.Table(o.Items)
	console.GroupEnd()

	if len(o.Items) > 1 {
		console.Warn("stock low", map[string]int{"NB-01": 3})
	}
	console.LogLevel(chromelogger.LevelNotice, "order {id} placed by {customer}", map[string]any{
		"id":       o.ID,
		"customer": o.Customer.Name,
	})
	s.logger.WithContext(r.Context()).WithField("order_id", o.ID).Info("order rendered")

	writeJSON(w, http.StatusOK, map[string]any{"order": o.ID, "rows": console.Len()})
}

func (s *server) handleLevel(w http.ResponseWriter, r *http.Request) {
	console := chromelogger.FromContext(r.Context())
	q := r.URL.Query()

	level, err := chromelogger.ParseLevel(q.Get("level"))
	if err != nil {
		console.ReportError(err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := make(map[string]any)
	for key, values := range q {
		if key != "level" && key != "msg" && len(values) > 0 {
			ctx[key] = values[0]
		}
	}
	msg := q.Get("msg")
	if msg == "" {
		msg = "sample {level} message"
		ctx["level"] = string(level)
	}
	console.LogLevel(level, msg, ctx)

	kind, _ := level.Kind()
	writeJSON(w, http.StatusOK, map[string]string{"level": string(level), "kind": kind.String()})
}

func (s *server) handleZap(w http.ResponseWriter, r *http.Request) {
	console := chromelogger.FromContext(r.Context())
	logger := zap.New(
		zapcore.NewTee(s.zap.Core(), zapconsole.NewCore(console, zap.DebugLevel)),
		zap.AddCaller(),
	).Named(s.service)

	logger.Debug("cache lookup", zap.String("key", "order:1001"), zap.Bool("hit", false))
	logger.Info("order loaded", zap.Int("id", 1001), zap.Duration("took", 42*time.Millisecond))

	writeJSON(w, http.StatusOK, map[string]int{"rows": console.Len()})
}

func (s *server) handlePanic(w http.ResponseWriter, r *http.Request) {
	chromelogger.FromContext(r.Context()).Info("about to panic")
	panic("demo panic")
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.service,
		"version": chromelogger.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
