package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/qc-advancedmedic/nui/internal/config"
)

// MeasurementOutcome is the measurement callback outcomes are written to.
const MeasurementOutcome = "treatment_outcome"

// Outcome is one host callback result.
type Outcome struct {
	Endpoint  string
	Action    string
	BodyPart  string
	ItemType  string
	PatientID string
	Success   bool
	Latency   time.Duration
	Time      time.Time
}

// Point converts the outcome to an influx point.
func (o Outcome) Point() *influxdb2_write.Point {
	ts := o.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	p := influxdb2_write.NewPointWithMeasurement(MeasurementOutcome).
		AddTag("endpoint", o.Endpoint).
		AddField("success", o.Success).
		AddField("latency_ms", float64(o.Latency.Microseconds())/1000).
		SetTime(ts)
	if o.Action != "" {
		p.AddTag("action", o.Action)
	}
	if o.BodyPart != "" {
		p.AddTag("body_part", o.BodyPart)
	}
	if o.ItemType != "" {
		p.AddTag("item_type", o.ItemType)
	}
	if o.PatientID != "" {
		p.AddField("patient_id", o.PatientID)
	}
	return p
}

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Config       config.InfluxConfig
	Logger       zerolog.Logger

	backupFile *os.File
	mu         sync.Mutex
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger) *Manager {
	return &Manager{
		Config: cfg,
		Logger: log,
	}
}

// Connect establishes a connection to InfluxDB. When the server cannot be
// reached, points go to the gzip backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.Config.Enabled {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.Config.URL,
		m.Config.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000).
			SetHTTPRequestTimeout(uint(max(m.Config.Timeout/time.Second, 1))),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.Logger.Info().Str("backupPath", m.Config.Backup).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		return m.UseBackup()
	}

	if err = m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.IsValid = true
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

// UseBackup switches writes to the gzip backup file.
func (m *Manager) UseBackup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsValid = false
	if m.BackupWriter != nil {
		return nil
	}
	if m.Config.Backup == "" {
		return errors.New("influx backup path not set")
	}
	if err := os.MkdirAll(filepath.Dir(m.Config.Backup), 0755); err != nil {
		return fmt.Errorf("error creating backup directory: %v", err)
	}
	file, err := os.OpenFile(m.Config.Backup, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %v", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgName := m.Config.Org

	// ensure org exists
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// ensure bucket exists with 90 day retention
	if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, m.Config.Bucket); err != nil {
		m.Logger.Info().Str("bucket", m.Config.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, m.Config.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", m.Config.Bucket).Msg("Error creating bucket")
			return err
		}
	}

	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.Config.Org, m.Config.Bucket)

	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.Config.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())
}

// WriteOutcome writes a callback outcome to InfluxDB or the backup file.
func (m *Manager) WriteOutcome(ctx context.Context, o Outcome) error {
	return m.WritePoint(ctx, o.Point())
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(_ context.Context, point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}
	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
	}
	return nil
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			return err
		}
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		err := m.backupFile.Close()
		m.backupFile = nil
		return err
	}
	return nil
}
