package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotHeld is returned when another booking is mid-flight for the same slot
var ErrSlotHeld = errors.New("slot is held by another booking")

// releaseHoldScript deletes the hold only if it still carries our token,
// so an expired hold re-acquired by someone else is never released by us.
var releaseHoldScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisSlotHoldKeyPrefix = "slot:hold:"

	DefaultSlotHoldTTL = 30 * time.Second
)

// SlotHolder reserves a slot for the duration of a multi-step booking.
// A hold is advisory: the ledger's unique index remains the final arbiter.
type SlotHolder interface {
	Hold(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot) (string, error)
	Release(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot, token string) error
}

type SlotHoldService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewSlotHoldService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *SlotHoldService {
	if ttl <= 0 {
		ttl = DefaultSlotHoldTTL
	}
	return &SlotHoldService{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// Hold claims the slot with SET NX and returns the token needed to release it.
func (s *SlotHoldService) Hold(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot) (string, error) {
	key := SlotHoldKey(doctorID, date, slot)
	token := uuid.NewString()

	ok, err := s.redisClient.SetNX(ctx, key, token, s.ttl).Result()
	if err != nil {
		s.log.Warnf("Failed to hold slot %s: %+v", key, err)
		return "", fmt.Errorf("hold slot %s: %w", key, err)
	}
	if !ok {
		return "", ErrSlotHeld
	}

	s.log.Debugf("Held slot %s for %v", key, s.ttl)
	return token, nil
}

// Release drops the hold if it is still ours. Releasing an expired or
// foreign hold is a no-op.
func (s *SlotHoldService) Release(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot, token string) error {
	key := SlotHoldKey(doctorID, date, slot)

	deleted, err := releaseHoldScript.Run(ctx, s.redisClient, []string{key}, token).Int()
	if err != nil {
		s.log.Warnf("Failed to release slot hold %s: %+v", key, err)
		return fmt.Errorf("release slot %s: %w", key, err)
	}
	if deleted == 0 {
		s.log.Debugf("Slot hold %s already expired or taken over", key)
	}
	return nil
}

// SlotHoldKey is slot:hold:<doctor>:<YYYY-MM-DD>:<HH:MM>-<HH:MM>
func SlotHoldKey(doctorID uuid.UUID, date time.Time, slot entity.Slot) string {
	return fmt.Sprintf("%s%s:%s:%s", RedisSlotHoldKeyPrefix, doctorID, date.Format("2006-01-02"), slot)
}
