package dynamo

import (
	"context"
	"fmt"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// SignInLinkRepo records consumed sign-in links. PK: link_id; expires_at is the TTL attribute.
type SignInLinkRepo struct {
	client    API
	tableName string
}

func NewSignInLinkRepo(client API, tableName string) *SignInLinkRepo {
	return &SignInLinkRepo{client: client, tableName: tableName}
}

// Consume inserts the link id; a replay fails with domain.ErrConflict.
func (r *SignInLinkRepo) Consume(ctx context.Context, l *domain.SignInLink) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal sign-in link: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + fieldLinkID + ")"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("sign-in link %s already used: %w", l.LinkID, domain.ErrConflict)
	}
	return err
}
