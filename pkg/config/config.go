// Package config holds the switches that change how the map is drawn.
package config

import (
	"flag"
	"os"
	"strings"
)

// Environment variables read by FromEnv.
//
//	CITYMAP_DRAW_PARCELS=true|false (default false)
//	CITYMAP_EXTRA_SHAPES=<path or URL> (optional; .geojson, .json, .db, postgres://, s3://)
//	CITYMAP_S3_REGION=<region> (default us-east-1)
//	CITYMAP_S3_ENDPOINT=<url> (optional, for MinIO)
//	CITYMAP_S3_PATH_STYLE=true|false (default false)
//	CITYMAP_S3_ACCESS_KEY_ID / CITYMAP_S3_SECRET_ACCESS_KEY (optional; otherwise the AWS default chain)
const (
	EnvDrawParcels = "CITYMAP_DRAW_PARCELS"
	EnvExtraShapes = "CITYMAP_EXTRA_SHAPES"
	EnvS3Region    = "CITYMAP_S3_REGION"
	EnvS3Endpoint  = "CITYMAP_S3_ENDPOINT"
	EnvS3PathStyle = "CITYMAP_S3_PATH_STYLE"
	EnvS3AccessKey = "CITYMAP_S3_ACCESS_KEY_ID"
	EnvS3SecretKey = "CITYMAP_S3_SECRET_ACCESS_KEY"
)

// Flags control which optional layers get built.
type Flags struct {
	DrawParcels bool
	// ExtraShapes names a source of extra geo shapes. Empty means none.
	ExtraShapes string
}

// FromEnv reads Flags from the process environment.
func FromEnv() Flags {
	return Flags{
		DrawParcels: envBool(EnvDrawParcels),
		ExtraShapes: strings.TrimSpace(os.Getenv(EnvExtraShapes)),
	}
}

// Register binds the fields to command line flags, using the current values
// as defaults. Call it after FromEnv so the command line wins.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.BoolVar(&f.DrawParcels, "draw_parcels", f.DrawParcels, "build and draw parcels")
	fs.StringVar(&f.ExtraShapes, "extra_shapes", f.ExtraShapes, "extra shapes to draw: GeoJSON file, SQLite cache, postgres:// or s3:// URL")
}

// S3 describes the object store used for s3:// extra shape sources.
type S3 struct {
	Region          string
	Endpoint        string // optional; set for MinIO and other compatible stores
	PathStyle       bool
	AccessKeyID     string // optional
	SecretAccessKey string // optional
}

// S3FromEnv reads the S3 settings from the process environment.
func S3FromEnv() S3 {
	region := os.Getenv(EnvS3Region)
	if region == "" {
		region = "us-east-1"
	}
	return S3{
		Region:          region,
		Endpoint:        os.Getenv(EnvS3Endpoint),
		PathStyle:       envBool(EnvS3PathStyle),
		AccessKeyID:     os.Getenv(EnvS3AccessKey),
		SecretAccessKey: os.Getenv(EnvS3SecretKey),
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
