package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"go.uber.org/zap"
)

// AWSClients bundles the long-lived AWS service clients.
type AWSClients struct {
	S3   *s3.Client
	SFN  *sfn.Client
	Logs *cloudwatchlogs.Client
}

// LoadAWS resolves credentials through the default chain. Retries are disabled:
// sync treats every storage failure as final for that image.
func LoadAWS(ctx context.Context, cfg *Config, log *zap.Logger) (*AWSClients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		log.Warn("AWS credentials not found", zap.Error(err))
	} else {
		log.Info("AWS credentials found", zap.String("region", awsCfg.Region))
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3PathStyle
	})

	return &AWSClients{
		S3:   s3Client,
		SFN:  sfn.NewFromConfig(awsCfg),
		Logs: cloudwatchlogs.NewFromConfig(awsCfg),
	}, nil
}
