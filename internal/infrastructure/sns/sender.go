package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AymanSha3ban/MUC-Library/internal/config"
	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/awscfg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// publishAPI is the subset of the SNS client used by WarningPublisher.
type publishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// WarningPublisher forwards reconciliation warnings to an SNS topic so
// operators can repair drift out of band.
type WarningPublisher struct {
	client   publishAPI
	topicARN string
}

func NewWarningPublisher(ctx context.Context, cfg *config.Config) (*WarningPublisher, error) {
	awsCfg, err := awscfg.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = awscfg.Endpoint(cfg)
	})
	return &WarningPublisher{client: client, topicARN: cfg.WarningsTopicARN}, nil
}

func (p *WarningPublisher) Publish(ctx context.Context, w domain.Warning) error {
	body, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal warning: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("identity reconciliation: " + w.Step),
		Message:  aws.String(string(body)),
	})
	return err
}
