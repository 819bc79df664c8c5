package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"firmen-scout/config"
)

// SnapshotArchive legt JSON-Snapshots abgeschlossener Recherchen in einem
// S3-kompatiblen Bucket ab. Ohne Konfiguration bleibt das Archiv aus.
type SnapshotArchive struct {
	client *s3.Client
	bucket string
	base   string
}

// NewSnapshotArchive erstellt das Archiv. Bei fehlender S3-Konfiguration wird
// (nil, nil) zurückgegeben; Aufrufer prüfen auf nil.
func NewSnapshotArchive(cfg *config.Config) (*SnapshotArchive, error) {
	if !cfg.SnapshotArchiveConfigured() {
		return nil, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.SnapshotS3URL,
				SigningRegion:     cfg.SnapshotS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.SnapshotS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.SnapshotS3Key, cfg.SnapshotS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return &SnapshotArchive{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.SnapshotS3Bucket,
		base:   cfg.SnapshotS3URL,
	}, nil
}

// ArchiveSnapshot lädt einen Recherche-Snapshot hoch und gibt den Link zurück.
// Der Schlüssel kodiert Firma, Modul und Zeitpunkt des Laufs.
func (a *SnapshotArchive) ArchiveSnapshot(ctx context.Context, companyID uint, module string, payload []byte) (string, error) {
	key := fmt.Sprintf("research/%d/%s-%s.json", companyID, module, time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", a.base, a.bucket, key), nil
}
