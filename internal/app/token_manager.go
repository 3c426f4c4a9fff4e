package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/piparkaq/hackboard/internal/models"
)

const (
	timeFormat     = "2006-01-02 15:04:05"
	identityKeyTpl = "identity:%s"    // identity:${token} -> hash with email
	emailKeyTpl    = "tokens:%s"      // tokens:${email} -> current token
	chatKeyTpl     = "chat:%d"        // chat:${chatID} -> bound contest
	tokenPrefix    = "hb-"
)

// TokenManager issues and tracks API bearer tokens. One live token per
// email; the identity hash is what Auth.ResolveEmail reads.
type TokenManager struct {
	redis *redis.Client
}

func NewTokenManager(redis *redis.Client) *TokenManager {
	return &TokenManager{redis: redis}
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// FetchOrCreateToken returns the email's current token, minting one on
// first use. The bool reports whether a new token was created.
func (tm *TokenManager) FetchOrCreateToken(ctx context.Context, email string) (*models.TokenInfo, bool, error) {
	emailKey := fmt.Sprintf(emailKeyTpl, email)

	token, err := tm.redis.Get(ctx, emailKey).Result()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("failed to check token: %w", err)
	}

	now := time.Now().UTC()
	isNewToken := false

	if err == redis.Nil {
		token, err = generateToken()
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate token: %w", err)
		}

		pipe := tm.redis.Pipeline()
		pipe.Set(ctx, emailKey, token, 0)
		pipe.HSet(ctx, fmt.Sprintf(identityKeyTpl, token), map[string]interface{}{
			"email":                 email,
			"request_count":         1,
			"last_request_dttm_utc": now.Format(timeFormat),
			"created_dttm_utc":      now.Format(timeFormat),
		})

		if _, err := pipe.Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to create token: %w", err)
		}

		isNewToken = true
	} else {
		pipe := tm.redis.Pipeline()
		pipe.HIncrBy(ctx, fmt.Sprintf(identityKeyTpl, token), "request_count", 1)
		pipe.HSet(ctx, fmt.Sprintf(identityKeyTpl, token), "last_request_dttm_utc", now.Format(timeFormat))

		if _, err := pipe.Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("failed to update token stats: %w", err)
		}
	}

	values, err := tm.redis.HGetAll(ctx, fmt.Sprintf(identityKeyTpl, token)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get token info: %w", err)
	}

	lastReqTime, _ := time.Parse(timeFormat, values["last_request_dttm_utc"])
	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])
	reqCount, _ := strconv.Atoi(values["request_count"])

	return &models.TokenInfo{
		Token:           token,
		Email:           values["email"],
		RequestCount:    reqCount,
		LastRequestTime: lastReqTime,
		CreatedTime:     createdTime,
	}, isNewToken, nil
}

// AssociateChatWithContest binds a bot chat to the contest it manages.
func (tm *TokenManager) AssociateChatWithContest(ctx context.Context, chatID int64, mapping *models.ChatContestMapping) error {
	key := fmt.Sprintf(chatKeyTpl, chatID)
	return tm.redis.HSet(ctx, key, map[string]interface{}{
		"contest_id":          mapping.ContestID,
		"name":                mapping.Name,
		"comment":             mapping.Comment,
		"associated_dttm_utc": mapping.AssociationTime.Format(timeFormat),
		"registered_by":       mapping.RegisteredBy,
	}).Err()
}

func (tm *TokenManager) FetchContestMappingByChatID(ctx context.Context, chatID int64) (*models.ChatContestMapping, error) {
	key := fmt.Sprintf(chatKeyTpl, chatID)

	values, err := tm.redis.HGetAll(ctx, key).Result()
	if err == redis.Nil || len(values) == 0 {
		return nil, fmt.Errorf("no contest mapping found for chat %d", chatID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contest mapping for chat %d", chatID)
	}

	associationTime, _ := time.Parse(timeFormat, values["associated_dttm_utc"])
	registeredBy, _ := strconv.ParseInt(values["registered_by"], 10, 64)

	return &models.ChatContestMapping{
		ContestID:       values["contest_id"],
		Name:            values["name"],
		Comment:         values["comment"],
		AssociationTime: associationTime,
		RegisteredBy:    registeredBy,
	}, nil
}
