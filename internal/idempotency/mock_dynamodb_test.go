package idempotency

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory stand-in for the DynamoDB calls the store
// makes. It implements exactly the conditional expressions the store uses.
// NOTE: intentionally minimal and not production-grade.
type simpleMock struct {
	mu    sync.Mutex
	table map[string]map[string]types.AttributeValue

	failAll bool // simulate an unreachable store

	putCalls    int
	getCalls    int
	updateCalls int
	deleteCalls int
}

func newSimpleMock() *simpleMock {
	return &simpleMock{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func itemKey(attrs map[string]types.AttributeValue) (string, error) {
	attr, ok := attrs["idempotency_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing idempotency_key")
	}
	return attr.Value, nil
}

func numValue(attr types.AttributeValue) int64 {
	n, ok := attr.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	v, _ := strconv.ParseInt(n.Value, 10, 64)
	return v
}

func strValue(attr types.AttributeValue) string {
	s, ok := attr.(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return s.Value
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.failAll {
		return nil, errors.New("dynamodb offline")
	}

	k, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}

	// implement ConditionExpression: attribute_not_exists(idempotency_key) OR expires_at < :now
	if params.ConditionExpression != nil {
		if existing, ok := m.table[k]; ok {
			now := numValue(params.ExpressionAttributeValues[":now"])
			if numValue(existing["expires_at"]) >= now {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}

	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.failAll {
		return nil, errors.New("dynamodb offline")
	}

	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.failAll {
		return nil, errors.New("dynamodb offline")
	}

	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}

	// implement ConditionExpression: #s = :inprogress AND claim_token = :token
	vals := params.ExpressionAttributeValues
	if strValue(item["status"]) != strValue(vals[":inprogress"]) ||
		strValue(item["claim_token"]) != strValue(vals[":token"]) {
		return nil, &types.ConditionalCheckFailedException{}
	}

	// apply SET #s = :completed, #r = :result, updated_at = :ua, expires_at = :exp
	item["status"] = vals[":completed"]
	item["result"] = vals[":result"]
	item["updated_at"] = vals[":ua"]
	item["expires_at"] = vals[":exp"]
	m.table[k] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *simpleMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.failAll {
		return nil, errors.New("dynamodb offline")
	}

	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}

	// implement ConditionExpression: claim_token = :token
	if strValue(item["claim_token"]) != strValue(params.ExpressionAttributeValues[":token"]) {
		return nil, &types.ConditionalCheckFailedException{}
	}

	delete(m.table, k)
	return &dyn.DeleteItemOutput{}, nil
}
