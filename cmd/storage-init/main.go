// Command storage-init prepares Azure storage for the item service: the rows
// table with its header row and, when configured, the change queue.
package main

import (
	"context"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"workboard/notify"
	"workboard/storage"
)

func main() {
	_ = godotenv.Load()
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("storage init starting")

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}
	sheet := os.Getenv("SHEET_NAME")
	if sheet == "" {
		sheet = "Sheet1"
	}

	ctx := context.Background()
	if table := os.Getenv("ROWS_TABLE"); table != "" {
		if err := initRows(ctx, connStr, table, sheet); err != nil {
			log.Fatalf("create rows table: %v", err)
		}
		log.WithFields(log.Fields{"table": table, "sheet": sheet}).Info("rows table ready")
	}
	if queue := os.Getenv("CHANGES_QUEUE"); queue != "" {
		if err := initQueue(ctx, connStr, queue); err != nil {
			log.Fatalf("create changes queue: %v", err)
		}
		log.WithField("queue", queue).Info("changes queue ready")
	}

	log.Info("storage init complete")
}

func initRows(ctx context.Context, connStr, table, sheet string) error {
	ts, err := storage.NewTableStore(connStr, table)
	if err != nil {
		return err
	}
	if err := ts.CreateTable(ctx); err != nil {
		return err
	}
	return ts.WriteHeader(ctx, sheet)
}

func initQueue(ctx context.Context, connStr, queue string) error {
	qp, err := notify.NewQueuePublisher(connStr, queue)
	if err != nil {
		return err
	}
	return qp.CreateQueue(ctx)
}
