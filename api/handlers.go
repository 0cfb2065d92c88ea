package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"workboard/domain"
	"workboard/notify"
	"workboard/storage"
)

const tracerName = "workboard/api"

// Register wires up all API routes on the provided Echo instance. Changes are
// published after every committed write; feed serves the stream endpoint.
func Register(e *echo.Echo, store Storage, changes notify.Publisher, feed Subscriber, logger *log.Logger) {
	if logger == nil {
		panic("api.Register: logger is nil")
	}
	e.GET("/api/items", getItems(store, logger))
	e.POST("/api/items", postItem(store, changes, logger))
	e.PUT("/api/items/:id/progress", putProgress(store, changes, logger))
	if feed != nil {
		e.GET("/api/stream", streamChanges(feed, logger))
	}
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func getItems(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newListRequestMetrics(logger)
		var cause error
		defer func() {
			if cause == nil {
				cause = err
			}
			metrics.Log(c.Response().Status, cause)
		}()

		ctx, span := startSpan(c.Request().Context(), "items.list")
		defer span.End()

		fetchStart := time.Now()
		items, fetchErr := store.ListItems(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			cause = fetchErr
			failSpan(span, fetchErr)
			logger.WithError(fetchErr).Error("Error fetching items")
			metrics.SetErrorStage("storage")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to fetch items"})
		}
		if items == nil {
			items = []domain.Item{}
		}
		metrics.SetItemsReturned(len(items))
		span.SetAttributes(attribute.Int("items.count", len(items)))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, items)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postItem(store Storage, changes notify.Publisher, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in domain.NewItem
		if err := decodeBody(c, &in); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		ctx, span := startSpan(c.Request().Context(), "items.create", attribute.String("item.project", in.Project))
		defer span.End()

		if err := store.AppendItem(ctx, in); err != nil {
			failSpan(span, err)
			logger.WithError(err).WithField("project", in.Project).Error("Error adding item")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to add item"})
		}

		publish(ctx, changes, logger, notify.Change{Kind: notify.ItemCreated, Time: time.Now().UnixMilli()})
		return c.JSON(http.StatusOK, successResponse{Success: true})
	}
}

func putProgress(store Storage, changes notify.Publisher, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid item id"})
		}
		var req progressRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		// an absent progress resets the item, the same as an empty cell
		progress := domain.NotStarted
		if req.Progress != "" {
			if progress, err = domain.ParseProgress(req.Progress); err != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown progress"})
			}
		}

		ctx, span := startSpan(c.Request().Context(), "items.update_progress",
			attribute.Int("item.id", id),
			attribute.String("item.progress", string(progress)),
		)
		defer span.End()

		if err := store.UpdateProgress(ctx, id, progress); err != nil {
			failSpan(span, err)
			if errors.Is(err, storage.ErrInvalidRow) {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid item id"})
			}
			logger.WithError(err).WithField("id", id).Error("Error updating item")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to update item"})
		}

		publish(ctx, changes, logger, notify.Change{
			Kind:     notify.ProgressUpdated,
			ItemID:   id,
			Progress: progress,
			Time:     time.Now().UnixMilli(),
		})
		return c.JSON(http.StatusOK, successResponse{Success: true})
	}
}

// publish reports a committed change. The write already happened, so a
// failure here is logged and never turned into an error response.
func publish(ctx context.Context, changes notify.Publisher, logger *log.Logger, ch notify.Change) {
	if changes == nil {
		return
	}
	if err := changes.Publish(ctx, ch); err != nil {
		logger.WithError(err).WithField("kind", ch.Kind).Warn("change notification failed")
	}
}

// decodeBody reads a JSON body. An empty body leaves out untouched, which the
// handlers treat as all fields absent.
func decodeBody(c echo.Context, out any) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodySize))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return sonic.ConfigStd.Unmarshal(data, out)
}
