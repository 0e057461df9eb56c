package blob

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Storage drivers selectable through Options.Driver.
const (
	DriverMinio  = "minio"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// Options configures a ServiceClient. Exactly one of AccountURL or
// ConnectionString must be set (the account URL wins when both are present),
// and Container is always required.
type Options struct {
	// Driver picks the backend implementation. Empty means DriverMinio.
	Driver string

	// AccountURL is the storage endpoint, e.g. "https://blob.example.com:9000".
	// A bare host:port is accepted and treated as non-TLS. AccessKey and
	// SecretKey are used when set; otherwise credentials are resolved from
	// the environment chain.
	AccountURL string
	AccessKey  string
	SecretKey  string

	// ConnectionString is the self-contained alternative to AccountURL:
	// "endpoint=host:9000;accessKey=...;secretKey=...;useSSL=false".
	ConnectionString string

	// Container is the bucket that holds every blob managed by the client.
	Container string

	// ChunkSize overrides DefaultChunkSize for uploads that do not carry
	// their own UploadConfig.
	ChunkSize int64
}

// endpointConfig is the resolved transport configuration shared by the MinIO
// and S3 backends.
type endpointConfig struct {
	Endpoint  string // host:port, no scheme
	Secure    bool
	AccessKey string
	SecretKey string
}

// URL reconstructs the endpoint as a URL for SDKs that want one.
func (e endpointConfig) URL() string {
	scheme := "http"
	if e.Secure {
		scheme = "https"
	}
	return scheme + "://" + e.Endpoint
}

// resolve validates the connection parameters and normalizes them into an
// endpointConfig. It fails with ErrInvalidConfig before any network call.
func (o Options) resolve() (endpointConfig, error) {
	if o.Container == "" {
		return endpointConfig{}, fmt.Errorf("%w: container name is required", ErrInvalidConfig)
	}

	switch {
	case o.AccountURL != "":
		endpoint, secure, err := splitEndpoint(o.AccountURL)
		if err != nil {
			return endpointConfig{}, err
		}
		return endpointConfig{
			Endpoint:  endpoint,
			Secure:    secure,
			AccessKey: o.AccessKey,
			SecretKey: o.SecretKey,
		}, nil

	case o.ConnectionString != "":
		return parseConnectionString(o.ConnectionString)

	default:
		return endpointConfig{}, fmt.Errorf("%w: provide either an account URL or a connection string", ErrInvalidConfig)
	}
}

// splitEndpoint strips the scheme off an account URL. "https" marks the
// endpoint secure; a missing scheme is taken as plain http.
func splitEndpoint(accountURL string) (string, bool, error) {
	if !strings.Contains(accountURL, "://") {
		return accountURL, false, nil
	}
	u, err := url.Parse(accountURL)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("%w: malformed account URL %q", ErrInvalidConfig, accountURL)
	}
	return u.Host, u.Scheme == "https", nil
}

// parseConnectionString decodes "key=value;key=value" pairs. Recognized keys
// are endpoint, accessKey, secretKey and useSSL; endpoint is mandatory. An
// explicit useSSL wins over the scheme of the endpoint value.
func parseConnectionString(raw string) (endpointConfig, error) {
	fields := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return endpointConfig{}, fmt.Errorf("%w: malformed connection string segment %q", ErrInvalidConfig, pair)
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if fields["endpoint"] == "" {
		return endpointConfig{}, fmt.Errorf("%w: connection string is missing an endpoint", ErrInvalidConfig)
	}
	endpoint, secure, err := splitEndpoint(fields["endpoint"])
	if err != nil {
		return endpointConfig{}, err
	}

	cfg := endpointConfig{
		Endpoint:  endpoint,
		Secure:    secure,
		AccessKey: fields["accesskey"],
		SecretKey: fields["secretkey"],
	}
	if v, ok := fields["usessl"]; ok {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return endpointConfig{}, fmt.Errorf("%w: useSSL must be a boolean, got %q", ErrInvalidConfig, v)
		}
		cfg.Secure = useSSL
	}
	return cfg, nil
}
