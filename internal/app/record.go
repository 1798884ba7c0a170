package app

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/AlSimons/graph-ambient-weather/internal/config"
	"github.com/AlSimons/graph-ambient-weather/internal/mqtt"
	"github.com/AlSimons/graph-ambient-weather/internal/store/repository"
)

// RunRecorder stores DHT-22 telemetry from MQTT in the readings table until
// ctx is done.
func RunRecorder(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"sqlitePath", cfg.SQLitePath,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"mqttStationID", cfg.MQTTStationID,
	)

	return withMigratedDB(ctx, cfg, logger, func(conn *sql.DB) error {
		repo := repository.NewRepository(conn, logger)
		sub := mqtt.NewSubscriber(cfg, logger, readingHandler(repo, logger))
		defer sub.Disconnect()

		if err := sub.Connect(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		logger.Info("mqtt disconnecting")
		return ctx.Err()
	})
}

func readingHandler(repo repository.WeatherRepository, logger *slog.Logger) mqtt.Handler {
	return func(ctx context.Context, t mqtt.Telemetry) error {
		logger.Debug("processing telemetry message", "station_id", t.StationID, "timestamp", t.Timestamp)
		if err := repo.InsertReading(ctx, t.StationID, t.Timestamp, t.Temperature, t.Humidity); err != nil {
			return err
		}
		logger.Debug("stored telemetry", "station_id", t.StationID)
		return nil
	}
}
