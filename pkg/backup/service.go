// Package backup snapshots the CRM data set and ships it to S3.
package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jmoiron/sqlx"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// Service handles data snapshots
type Service struct {
	db            *sqlx.DB
	s3Client      *s3.Client
	bucket        string
	retentionDays int
}

// Config holds backup configuration
type Config struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3Bucket           string
	RetentionDays      int // Number of days to keep backups
}

// Snapshot is the full exported data set, one array per table.
type Snapshot struct {
	CreatedAt  time.Time         `json:"created_at"`
	Leads      []models.Lead     `json:"leads"`
	Tasks      []models.Task     `json:"tasks"`
	Activities []models.Activity `json:"activities"`
	Notes      []models.Note     `json:"notes"`
	Logs       []models.Log      `json:"logs"`
}

// NewService creates a new backup service
func NewService(db *sqlx.DB, cfg Config) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		db:            db,
		s3Client:      s3.NewFromConfig(awsCfg),
		bucket:        cfg.S3Bucket,
		retentionDays: cfg.RetentionDays,
	}, nil
}

// BackupResult contains backup operation results
type BackupResult struct {
	S3Key        string
	Size         int64
	Duration     time.Duration
	UploadedToS3 bool
	Counts       map[string]int
}

// CreateBackup exports every table as gzipped JSON and uploads it to S3.
func (s *Service) CreateBackup(ctx context.Context) (*BackupResult, error) {
	start := time.Now()

	snapshot, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format("20060102-150405")
	key := fmt.Sprintf("backups/leadpipe-%s.json.gz", timestamp)
	log.Printf("🔄 Starting data backup: %s", key)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	result := &BackupResult{
		S3Key:    key,
		Size:     int64(buf.Len()),
		Duration: time.Since(start),
		Counts: map[string]int{
			"leads":      len(snapshot.Leads),
			"tasks":      len(snapshot.Tasks),
			"activities": len(snapshot.Activities),
			"notes":      len(snapshot.Notes),
			"logs":       len(snapshot.Logs),
		},
	}

	if s.bucket != "" {
		_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(s.bucket),
			Key:          aws.String(key),
			Body:         bytes.NewReader(buf.Bytes()),
			ContentType:  aws.String("application/gzip"),
			StorageClass: types.StorageClassStandardIa,
		})
		if err != nil {
			return result, fmt.Errorf("failed to upload to S3: %w", err)
		}
		result.UploadedToS3 = true
		log.Printf("✅ Backup uploaded to S3: s3://%s/%s", s.bucket, key)

		if err := s.cleanupOldBackups(ctx); err != nil {
			log.Printf("⚠️  Failed to cleanup old backups: %v", err)
		}
	}

	log.Printf("✅ Backup completed: %s (size: %d bytes, duration: %s)",
		key, result.Size, result.Duration)

	return result, nil
}

// Export reads every table into a Snapshot without uploading anything.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{CreatedAt: time.Now().UTC()}

	if err := s.db.SelectContext(ctx, &snapshot.Leads, "SELECT * FROM leads ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to export leads: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snapshot.Tasks, "SELECT * FROM tasks ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snapshot.Activities, "SELECT * FROM activities ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to export activities: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snapshot.Notes, "SELECT * FROM notes ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to export notes: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snapshot.Logs, "SELECT * FROM logs ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to export logs: %w", err)
	}

	return snapshot, nil
}

// cleanupOldBackups deletes backups older than the retention period
func (s *Service) cleanupOldBackups(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	result, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("backups/"),
	})
	if err != nil {
		return fmt.Errorf("failed to list S3 objects: %w", err)
	}

	var deleted int
	for _, obj := range result.Contents {
		if obj.LastModified.Before(cutoff) {
			_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				log.Printf("⚠️  Failed to delete old backup %s: %v", *obj.Key, err)
				continue
			}
			deleted++
			log.Printf("🗑️  Deleted old backup: %s (age: %d days)",
				*obj.Key, int(time.Since(*obj.LastModified).Hours()/24))
		}
	}

	if deleted > 0 {
		log.Printf("✅ Cleaned up %d old backups (retention: %d days)", deleted, s.retentionDays)
	}

	return nil
}

// BackupInfo contains information about a stored backup
type BackupInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	Age          time.Duration
}

// ListBackups lists all backups in S3
func (s *Service) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	if s.bucket == "" {
		return nil, fmt.Errorf("S3 bucket not configured")
	}

	result, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("backups/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list S3 objects: %w", err)
	}

	backups := make([]BackupInfo, 0, len(result.Contents))
	for _, obj := range result.Contents {
		backups = append(backups, BackupInfo{
			Key:          *obj.Key,
			Size:         *obj.Size,
			LastModified: *obj.LastModified,
			Age:          time.Since(*obj.LastModified),
		})
	}

	return backups, nil
}
