// Package redis holds the redigo connection plumbing shared by the Redis
// backed components.
package redis

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gomodule/redigo/redis"

	sqerrors "github.com/chosen1st/sqoop/errors"
)

var (
	// ErrInvalidScheme is returned when the Redis URI scheme is invalid
	ErrInvalidScheme = errors.New("invalid Redis database URI scheme")
	// ErrInvalidDatabase is returned when the URI path is not a database number
	ErrInvalidDatabase = errors.New("invalid Redis database number")
)

// PoolOptions configures the pool and the connections it dials
type PoolOptions struct {
	// URI is the Redis connection URI
	URI string

	// MaxConnections caps the connections handed out at once
	MaxConnections int
	MaxIdle        int
	IdleTimeout    time.Duration

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// UseTLS forces TLS on redis:// URIs; rediss:// always uses it
	UseTLS        bool
	TLSSkipVerify bool
	TLSCertPath   string
}

// Target is the dial target described by a Redis URI
type Target struct {
	Network  string
	Address  string
	Password string
	Database int
	TLS      bool
}

// ParseURI splits a redis://, rediss:// or unix:// URI into a dial target
func ParseURI(raw string) (Target, error) {
	uri, err := url.Parse(raw)
	if err != nil {
		return Target{}, sqerrors.NewConnectionError(Redact(raw), fmt.Errorf("invalid URI: %w", err))
	}

	var target Target
	switch uri.Scheme {
	case "redis", "rediss":
		target.Network = "tcp"
		target.Address = uri.Host
		target.TLS = uri.Scheme == "rediss"
		if uri.User != nil {
			target.Password, _ = uri.User.Password()
		}
		if len(uri.Path) > 1 {
			db, err := strconv.Atoi(uri.Path[1:])
			if err != nil || db < 0 {
				return Target{}, sqerrors.NewConnectionError(Redact(raw), ErrInvalidDatabase)
			}
			target.Database = db
		}
	case "unix":
		target.Network = "unix"
		target.Address = uri.Path
	default:
		return Target{}, sqerrors.NewConnectionError(Redact(raw), ErrInvalidScheme)
	}
	return target, nil
}

// Redact hides the password of a URI so it can be logged
func Redact(raw string) string {
	uri, err := url.Parse(raw)
	if err != nil || uri.User == nil {
		return raw
	}
	return uri.Redacted()
}

// CreatePool validates the URI and returns a pool dialing it on demand
func CreatePool(options PoolOptions) (*redis.Pool, error) {
	if _, err := ParseURI(options.URI); err != nil {
		return nil, err
	}

	return &redis.Pool{
		MaxActive:   options.MaxConnections,
		MaxIdle:     options.MaxIdle,
		IdleTimeout: options.IdleTimeout,
		Wait:        true,
		Dial: func() (redis.Conn, error) {
			return DialRedis(options)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}, nil
}

// DialRedis opens one connection, selecting the URI's database and
// authenticating with its password
func DialRedis(options PoolOptions) (redis.Conn, error) {
	target, err := ParseURI(options.URI)
	if err != nil {
		return nil, err
	}

	dialOptions, err := options.dialOptions(target)
	if err != nil {
		return nil, err
	}

	conn, err := redis.Dial(target.Network, target.Address, dialOptions...)
	if err != nil {
		return nil, sqerrors.NewConnectionError(Redact(options.URI),
			fmt.Errorf("failed to connect: %w", err))
	}
	return conn, nil
}

func (o PoolOptions) dialOptions(target Target) ([]redis.DialOption, error) {
	opts := []redis.DialOption{
		redis.DialConnectTimeout(o.ConnectTimeout),
		redis.DialReadTimeout(o.ReadTimeout),
		redis.DialWriteTimeout(o.WriteTimeout),
		redis.DialDatabase(target.Database),
	}
	if target.Password != "" {
		opts = append(opts, redis.DialPassword(target.Password))
	}

	if target.Network != "tcp" || !(target.TLS || o.UseTLS) {
		return opts, nil
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: o.TLSSkipVerify}
	if o.TLSCertPath != "" {
		pool, err := LoadCertPool(o.TLSCertPath)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}
	return append(opts, redis.DialUseTLS(true), redis.DialTLSConfig(tlsConfig)), nil
}

// LoadCertPool adds the PEM certificates in certPath to the system pool
func LoadCertPool(certPath string) (*x509.CertPool, error) {
	pool, _ := x509.SystemCertPool()
	if pool == nil {
		pool = x509.NewCertPool()
	}

	pem, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cert file %q: %w", certPath, err)
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to append certs from %q", certPath)
	}
	return pool, nil
}
