package db

import (
	"fmt"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/YassineKADER/Drawniness-Iot-Project/config"
)

const defaultTimeout = 5 * time.Second

// Open constructs the InfluxDB HTTP client, verifies connectivity with a
// bounded ping and ensures the configured database exists. The returned
// client is the single process-wide store handle; it is owned by the store
// adapter and closed on shutdown.
func Open(cfg config.Config) (client.Client, error) {
	timeout := time.Duration(cfg.Influx.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     fmt.Sprintf("http://%s:%d", cfg.Influx.Host, cfg.Influx.Port),
		Username: cfg.Influx.Username,
		Password: cfg.Influx.Password,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, err
	}

	if _, _, err := c.Ping(timeout); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("influxdb ping failed: %w", err)
	}

	// CREATE DATABASE is idempotent in InfluxDB 1.x. The name comes from
	// operator config, never from request input.
	q := client.NewQuery(fmt.Sprintf("CREATE DATABASE %q", cfg.Influx.Database), "", "")
	resp, err := c.Query(q)
	if err == nil {
		err = resp.Error()
	}
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ensure database %q: %w", cfg.Influx.Database, err)
	}

	return c, nil
}
