package mirror

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mrlokans/bookmemo/internal/metrics"
)

type userGenres struct {
	UID   string   `dynamodbav:"uid"`
	Genre []string `dynamodbav:"genre"`
}

// GenreStore reads and writes the "genre" attribute of the users table.
// Other user attributes are left untouched.
type GenreStore struct {
	client  dynamoAPI
	table   string
	metrics *metrics.Collector
}

func NewGenreStore(client dynamoAPI, table string, collector *metrics.Collector) *GenreStore {
	return &GenreStore{client: client, table: table, metrics: collector}
}

func userKey(uid string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
}

// FavoriteGenres returns the user's genres. A missing user yields an empty list.
func (s *GenreStore) FavoriteGenres(ctx context.Context, uid string) ([]string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            userKey(uid),
		ConsistentRead: aws.Bool(true),
	})
	s.metrics.ObserveMirror("get_genres", err)
	if err != nil {
		return nil, transportError("get genres", err)
	}
	if len(out.Item) == 0 {
		return []string{}, nil
	}

	var user userGenres
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, transportError("unmarshal genres", err)
	}
	if user.Genre == nil {
		return []string{}, nil
	}
	return user.Genre, nil
}

// SetFavoriteGenres replaces the user's genre list, creating the user item
// when absent.
func (s *GenreStore) SetFavoriteGenres(ctx context.Context, uid string, genres []string) error {
	if genres == nil {
		genres = []string{}
	}

	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("genre"), expression.Value(genres))).
		Build()
	if err != nil {
		return transportError("build update", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       userKey(uid),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	s.metrics.ObserveMirror("set_genres", err)
	if err != nil {
		return transportError("set genres", err)
	}
	return nil
}
