package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chokistore/backend/pkg/config"
	"github.com/chokistore/backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopics          = errors.New("at least one pubsub topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client owns the Pub/Sub connection and one publisher handle per topic.
// Publishers are created with message ordering enabled so events for the
// same aggregate reach subscribers in the order they were written.
type Client struct {
	client    *pubsub.Client
	projectID string
	topics    []string

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient connects and fails fast when a configured topic is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}

	inner, err := pubsub.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{
		client:     inner,
		projectID:  projectID,
		topics:     cfg.Topics(),
		publishers: make(map[string]*pubsub.Publisher),
	}
	if err := c.checkTopics(ctx); err != nil {
		_ = inner.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topics", c.topics), "pubsub client initialized")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	return opts
}

func (c *Client) checkTopics(ctx context.Context) error {
	if len(c.topics) == 0 {
		return errNoTopics
	}
	var missing []string
	for _, name := range c.topics {
		resource := topicResourceName(c.projectID, name)
		if resource == "" {
			return fmt.Errorf("topic %q not configured", name)
		}
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: resource})
		switch {
		case status.Code(err) == codes.NotFound:
			missing = append(missing, name)
		case err != nil:
			return fmt.Errorf("checking topic %q: %w", name, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("pubsub topics do not exist: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Publisher returns the cached handle for a topic id or full resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	resource := topicResourceName(c.projectID, name)
	if resource == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	pub, ok := c.publishers[resource]
	if !ok {
		pub = c.client.Publisher(resource)
		pub.EnableMessageOrdering = true
		c.publishers[resource] = pub
	}
	return pub
}

// Ping re-checks that every configured topic still exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.checkTopics(ctx)
}

// Close flushes pending messages on every publisher before closing.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	pubs := c.publishers
	c.publishers = make(map[string]*pubsub.Publisher)
	c.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}
	return c.client.Close()
}

// topicResourceName expands a bare topic id to projects/<p>/topics/<id>.
// Full resource names pass through unchanged.
func topicResourceName(projectID, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(name, "projects/"); ok && strings.Contains(rest, "/topics/") {
		return name
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/topics/" + name
}
