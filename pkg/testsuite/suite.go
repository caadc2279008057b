package testsuite

import (
	"context"
	"log"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisSuite runs its tests against a throwaway redis container. It skips under -short and
// when no container runtime is reachable.
type RedisSuite struct {
	suite.Suite
	RedisContainer *tcredis.RedisContainer
	Redis          *redis.Client
	Ctx            context.Context
}

func (s *RedisSuite) SetupInfrastructure() {
	if testing.Short() {
		s.T().Skip("skipping redis integration suite in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(s.T())

	s.Ctx = context.Background()

	var err error
	s.RedisContainer, err = tcredis.Run(s.Ctx, "redis:7-alpine")
	s.Require().NoError(err)

	connStr, err := s.RedisContainer.ConnectionString(s.Ctx)
	s.Require().NoError(err)

	opts, err := redis.ParseURL(connStr)
	s.Require().NoError(err)

	s.Redis = redis.NewClient(opts)
	s.Require().NoError(s.Redis.Ping(s.Ctx).Err())
}

func (s *RedisSuite) TearDownInfrastructure() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("Failed to close redis client: %v", err)
		}
	}
	if s.RedisContainer != nil {
		if err := s.RedisContainer.Terminate(s.Ctx); err != nil {
			log.Printf("Failed to terminate redis container: %v", err)
		}
	}
}

func (s *RedisSuite) FlushAll() {
	s.Require().NoError(s.Redis.FlushAll(s.Ctx).Err())
}
