//go:build integration

package queue_test

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberforge-labs/asset-ledger/internal/config"
	"github.com/emberforge-labs/asset-ledger/internal/queue"
	"github.com/emberforge-labs/asset-ledger/internal/types"
	"github.com/emberforge-labs/asset-ledger/testutil"
)

const (
	rabbitUsername = "user"
	rabbitPassword = "password"

	// this version corresponds to docker tag for rabbitmq
	// it should be in sync with the broker version used in production
	rabbitVersion = "3.13"
)

var testQueueCfg *config.QueueConfig

func TestMain(m *testing.M) {
	cfg, cleanup, err := setupRabbitContainer()
	if err != nil {
		log.Fatalf("failed to setup rabbitmq container: %v", err)
	}
	testQueueCfg = cfg

	code := m.Run()
	cleanup()

	os.Exit(code)
}

// setupRabbitContainer setups container with rabbitmq returning broker credentials through
// config.QueueConfig, cleanup function that MUST be called in the end and an error if any
func setupRabbitContainer() (*config.QueueConfig, func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, err
	}

	randomString, err := testutil.RandomAlphaNum(3)
	if err != nil {
		return nil, nil, err
	}

	containerName := "rabbitmq-integration-tests-" + randomString
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       containerName,
		Repository: "rabbitmq",
		Tag:        rabbitVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + rabbitUsername,
			"RABBITMQ_DEFAULT_PASS=" + rabbitPassword,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		err := pool.Purge(resource)
		if err != nil {
			log.Fatalf("failed to purge resource: %v", err)
		}
	}

	hostPort := resource.GetPort("5672/tcp")
	url := fmt.Sprintf("localhost:%s", hostPort)

	// the broker takes a few seconds to accept connections
	err = pool.Retry(func() error {
		conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s/", rabbitUsername, rabbitPassword, url))
		if err != nil {
			return err
		}
		return conn.Close()
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &config.QueueConfig{
		User:           rabbitUsername,
		Password:       rabbitPassword,
		Url:            url,
		Exchange:       "ledger.records",
		PublishTimeout: 5 * time.Second,
		ConnectRetries: 3,
	}, cleanup, nil
}

func TestPublishRecord(t *testing.T) {
	ctx := t.Context()

	qm, err := queue.NewQueueManager(testQueueCfg)
	require.NoError(t, err)
	t.Cleanup(qm.Shutdown)

	// bind a fresh queue so the published record has somewhere to land
	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s/", rabbitUsername, rabbitPassword, testQueueCfg.Url))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	channel, err := conn.Channel()
	require.NoError(t, err)

	q, err := channel.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, channel.QueueBind(q.Name, "record.#", testQueueCfg.Exchange, false, nil))

	deliveries, err := channel.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	rec := &types.Record{
		Seq:       1,
		ID:        uuid.NewString(),
		Kind:      types.KindMint,
		Timestamp: 1750000000,
		Actor:     "forge-service",
		To:        "alice",
		Quantity:  10,
	}
	require.NoError(t, qm.PublishRecord(ctx, rec))

	select {
	case delivery := <-deliveries:
		assert.Equal(t, "record.mint", delivery.RoutingKey)
		assert.Equal(t, rec.ID, delivery.MessageId)
		assert.Equal(t, types.KindMint.String(), delivery.Type)

		var got types.Record
		require.NoError(t, json.Unmarshal(delivery.Body, &got))
		assert.Equal(t, *rec, got)
	case <-time.After(10 * time.Second):
		t.Fatal("no delivery received")
	}
}
