package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/influxdata/influxdb1-client/models"
	client "github.com/influxdata/influxdb1-client/v2"
	"go.uber.org/zap"

	"github.com/YassineKADER/Drawniness-Iot-Project/types"
)

const (
	measurementUsers  = "users"
	measurementEvents = "events"
	measurementSOS    = "sos"

	precisionNano = "ns"
	pingTimeout   = 5 * time.Second
)

// InfluxStore is the sole gateway to the time-series database. It tags
// records by their entity-defining fields for fast filtering, stores the
// remaining attributes as typed fields and assigns write-time nanosecond
// timestamps. All lookups use server-side bind parameters; user-supplied
// values are never interpolated into InfluxQL.
//
// The adapter is safe for concurrent use: every write is a single point
// insert and the underlying client serializes its own HTTP calls.
type InfluxStore struct {
	client   client.Client
	database string
	logger   *zap.Logger
}

func NewInfluxStore(c client.Client, database string, logger *zap.Logger) *InfluxStore {
	return &InfluxStore{
		client:   c,
		database: database,
		logger:   logger,
	}
}

// CreateUser appends a user record after checking the email is not already
// registered.
func (s *InfluxStore) CreateUser(ctx context.Context, user types.User) error {
	series, err := s.query(`SELECT * FROM "users" WHERE "email" = $email LIMIT 1`,
		map[string]interface{}{"email": user.Email})
	if err != nil {
		return err
	}
	if hasRows(series) {
		return ErrEmailTaken
	}

	point, err := client.NewPoint(measurementUsers,
		map[string]string{
			"user_id": user.UserID,
			"email":   user.Email,
		},
		map[string]interface{}{
			"name":            user.Name,
			"phone":           user.Phone,
			"hashed_password": user.HashedPassword,
		},
		time.Now())
	if err != nil {
		return err
	}
	return s.write(point)
}

// GetUserByEmail returns the most recent user record tagged with the given
// email, or ErrUserNotFound.
func (s *InfluxStore) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	series, err := s.query(`SELECT * FROM "users" WHERE "email" = $email ORDER BY time DESC LIMIT 1`,
		map[string]interface{}{"email": email})
	if err != nil {
		return types.User{}, err
	}
	if !hasRows(series) {
		return types.User{}, ErrUserNotFound
	}
	return scanUser(series[0]), nil
}

// GetUserByID returns the most recent user record for the given user id, or
// ErrUserNotFound.
func (s *InfluxStore) GetUserByID(ctx context.Context, userID string) (types.User, error) {
	series, err := s.query(`SELECT * FROM "users" WHERE "user_id" = $user_id ORDER BY time DESC LIMIT 1`,
		map[string]interface{}{"user_id": userID})
	if err != nil {
		return types.User{}, err
	}
	if !hasRows(series) {
		return types.User{}, ErrUserNotFound
	}
	return scanUser(series[0]), nil
}

// UserExists reports whether at least one user record carries the given
// user_id tag.
func (s *InfluxStore) UserExists(ctx context.Context, userID string) (bool, error) {
	series, err := s.query(`SELECT * FROM "users" WHERE "user_id" = $user_id LIMIT 1`,
		map[string]interface{}{"user_id": userID})
	if err != nil {
		return false, err
	}
	return hasRows(series), nil
}

// EventExists reports whether at least one event record carries the given
// event_id tag.
func (s *InfluxStore) EventExists(ctx context.Context, eventID string) (bool, error) {
	series, err := s.query(`SELECT * FROM "events" WHERE "event_id" = $event_id LIMIT 1`,
		map[string]interface{}{"event_id": eventID})
	if err != nil {
		return false, err
	}
	return hasRows(series), nil
}

// WriteEvent validates the user reference, appends a detection event and
// returns the freshly generated event id.
func (s *InfluxStore) WriteEvent(ctx context.Context, userID, eventType string, confidence float64) (string, error) {
	exists, err := s.UserExists(ctx, userID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}

	eventID := uuid.NewString()
	point, err := client.NewPoint(measurementEvents,
		map[string]string{
			"user_id":    userID,
			"event_id":   eventID,
			"event_type": eventType,
		},
		map[string]interface{}{
			"confidence": confidence,
		},
		time.Now())
	if err != nil {
		return "", err
	}
	if err := s.write(point); err != nil {
		return "", err
	}
	return eventID, nil
}

// WriteSOS validates the user and event references, appends a distress
// record and returns the freshly generated sos id.
func (s *InfluxStore) WriteSOS(ctx context.Context, userID, eventID, message string, latitude, longitude float64) (string, error) {
	exists, err := s.UserExists(ctx, userID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}

	exists, err = s.EventExists(ctx, eventID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
	}

	sosID := uuid.NewString()
	point, err := client.NewPoint(measurementSOS,
		map[string]string{
			"user_id":  userID,
			"event_id": eventID,
			"sos_id":   sosID,
		},
		map[string]interface{}{
			"message":   message,
			"latitude":  latitude,
			"longitude": longitude,
		},
		time.Now())
	if err != nil {
		return "", err
	}
	if err := s.write(point); err != nil {
		return "", err
	}
	return sosID, nil
}

// ResetAll drops the users, events and sos measurements. A failure on one
// measurement is logged and does not abort deletion of the others.
func (s *InfluxStore) ResetAll(ctx context.Context) error {
	var errs []error
	for _, measurement := range []string{measurementUsers, measurementEvents, measurementSOS} {
		q := client.NewQuery(fmt.Sprintf("DROP MEASUREMENT %q", measurement), s.database, "")
		resp, err := s.client.Query(q)
		if err == nil {
			err = resp.Error()
		}
		if err != nil {
			s.logger.Error("failed to drop measurement",
				zap.String("measurement", measurement), zap.Error(err))
			errs = append(errs, fmt.Errorf("drop %s: %w", measurement, err))
			continue
		}
		s.logger.Info("dropped measurement", zap.String("measurement", measurement))
	}
	return errors.Join(errs...)
}

// Ping probes store connectivity with a bounded timeout.
func (s *InfluxStore) Ping(ctx context.Context) error {
	if _, _, err := s.client.Ping(pingTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the underlying client connection.
func (s *InfluxStore) Close() error {
	return s.client.Close()
}

func (s *InfluxStore) query(command string, params map[string]interface{}) ([]models.Row, error) {
	q := client.NewQueryWithParameters(command, s.database, precisionNano, params)
	resp, err := s.client.Query(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := resp.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return resp.Results[0].Series, nil
}

func (s *InfluxStore) write(point *client.Point) error {
	batch, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: precisionNano,
	})
	if err != nil {
		return err
	}
	batch.AddPoint(point)
	if err := s.client.Write(batch); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func hasRows(series []models.Row) bool {
	return len(series) > 0 && len(series[0].Values) > 0
}

// scanUser maps a result row onto a User by column name. SELECT * returns
// tag keys and field keys as regular columns.
func scanUser(row models.Row) types.User {
	var user types.User
	if len(row.Values) == 0 {
		return user
	}
	values := row.Values[0]
	for i, column := range row.Columns {
		if i >= len(values) {
			break
		}
		value, ok := values[i].(string)
		if !ok {
			continue
		}
		switch column {
		case "user_id":
			user.UserID = value
		case "email":
			user.Email = value
		case "name":
			user.Name = value
		case "phone":
			user.Phone = value
		case "hashed_password":
			user.HashedPassword = value
		}
	}
	return user
}
