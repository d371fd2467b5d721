package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/bigmouth/restaurant-notifier/internal/aws"
)

// Ledger is the durable claim store the engine runs against. The DynamoDB
// Store is the production implementation; tests substitute in-memory ones.
type Ledger interface {
	TryClaim(ctx context.Context, key string, ttl time.Duration) (Claim, error)
	Commit(ctx context.Context, key, token, result string, ttl time.Duration) error
	Release(ctx context.Context, key, token string) error
}

// ErrStoreUnavailable wraps ledger errors where the outcome is unknown. The
// engine fails closed on it: the delivery is retried rather than risking a
// duplicate execution.
var ErrStoreUnavailable = errors.New("idempotency store unavailable")

// ErrClaimLost indicates a commit was fenced out: the claim expired and the
// key was taken over (or purged) before the commit landed.
var ErrClaimLost = errors.New("claim no longer owned")

// Store implements Ledger against DynamoDB. All three operations are single
// conditional writes; the table's TTL attribute (expires_at) handles decay.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	newToken  func() string
}

// NewStore returns a configured Store.
// tableName: DynamoDB table name for idempotency records.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		newToken:  uuid.NewString,
	}
}

// TryClaim atomically creates an IN_PROGRESS record for key unless a live
// record already exists. The create-if-absent-or-expired condition is a
// single conditional write, so two racing claimants can never both win.
func (s *Store) TryClaim(ctx context.Context, key string, ttl time.Duration) (Claim, error) {
	now := s.nowFunc()
	token := s.newToken()
	rec := Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		ClaimToken:     token,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(ttl).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return Claim{}, fmt.Errorf("marshal record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(idempotency_key) OR expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return s.classifyExisting(ctx, key)
		}
		return Claim{}, fmt.Errorf("%w: put item: %v", ErrStoreUnavailable, err)
	}

	return Claim{Outcome: Claimed, Token: token}, nil
}

// classifyExisting reads the record that blocked a claim and decides which
// duplicate path applies.
func (s *Store) classifyExisting(ctx context.Context, key string) (Claim, error) {
	rec, err := s.get(ctx, key)
	if err != nil {
		return Claim{}, err
	}
	if rec == nil || rec.ExpiresAt < s.nowFunc().Unix() {
		// The record vanished or expired between the failed write and this
		// read. The key is contended either way; redelivery sorts it out.
		return Claim{Outcome: AlreadyInProgress}, nil
	}
	if rec.Status == StatusCompleted {
		return Claim{Outcome: AlreadyCompleted, Result: rec.Result}, nil
	}
	return Claim{Outcome: AlreadyInProgress}, nil
}

// get retrieves a record by key. If not found, returns (nil, nil).
func (s *Store) get(ctx context.Context, key string) (*Record, error) {
	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
	}
	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: get item: %v", ErrStoreUnavailable, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// Commit transitions the record to COMPLETED, attaches the result and
// extends expiry to the completed-record retention window. The update is
// fenced on the claim token so a stale claimant whose record was reclaimed
// cannot overwrite the new owner.
func (s *Store) Commit(ctx context.Context, key, token, result string, ttl time.Duration) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression: awsString("SET #s = :completed, #r = :result, updated_at = :ua, expires_at = :exp"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
			"#r": "result",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":completed":  &types.AttributeValueMemberS{Value: StatusCompleted},
			":result":     &types.AttributeValueMemberS{Value: result},
			":ua":         &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":exp":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(ttl).Unix())},
			":inprogress": &types.AttributeValueMemberS{Value: StatusInProgress},
			":token":      &types.AttributeValueMemberS{Value: token},
		},
		ConditionExpression: awsString("#s = :inprogress AND claim_token = :token"),
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrClaimLost
		}
		return fmt.Errorf("%w: update item (commit): %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Release deletes the record outright so a failed attempt can be retried
// immediately instead of waiting out the in-progress expiry. Deletion is
// fenced on the claim token; losing the fence means there is nothing of
// ours left to release, which is not an error.
func (s *Store) Release(ctx context.Context, key, token string) error {
	input := &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: awsString("claim_token = :token"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: token},
		},
	}
	_, err := s.client.DeleteItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return nil
		}
		return fmt.Errorf("%w: delete item (release): %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Helper
func awsString(s string) *string { return &s }
