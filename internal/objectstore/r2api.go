package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/roammigrate/internal/common"
	"github.com/dmitrijs2005/roammigrate/internal/netx"
)

// DefaultCloudflareAPI is the Cloudflare v4 API root.
const DefaultCloudflareAPI = "https://api.cloudflare.com/client/v4"

// R2APIStore uploads through the Cloudflare REST API:
//
//	PUT {api}/accounts/{account}/r2/buckets/{bucket}/objects/{key}
type R2APIStore struct {
	client     *http.Client
	apiBase    string
	token      string
	accountID  string
	bucket     string
	publicBase string
}

// NewR2APIStore builds a store. An empty apiBase means DefaultCloudflareAPI.
func NewR2APIStore(client *http.Client, apiBase, token, accountID, bucket, publicBase string) *R2APIStore {
	if client == nil {
		client = &http.Client{}
	}
	if apiBase == "" {
		apiBase = DefaultCloudflareAPI
	}
	return &R2APIStore{
		client:     client,
		apiBase:    apiBase,
		token:      token,
		accountID:  accountID,
		bucket:     bucket,
		publicBase: publicBase,
	}
}

func (s *R2APIStore) header() http.Header {
	return http.Header{"Authorization": []string{"Bearer " + s.token}}
}

func (s *R2APIStore) bucketsURL() string {
	return fmt.Sprintf("%s/accounts/%s/r2/buckets", s.apiBase, url.PathEscape(s.accountID))
}

func (s *R2APIStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	target := fmt.Sprintf("%s/%s/objects/%s", s.bucketsURL(), url.PathEscape(s.bucket), url.PathEscape(key))

	if err := netx.PutObject(ctx, s.client, target, s.header(), body, contentType); err != nil {
		return "", err
	}
	return PublicURL(s.publicBase, key), nil
}

// Ping lists the account's buckets. A 403 means the token lacks R2 permissions.
func (s *R2APIStore) Ping(ctx context.Context) error {
	err := netx.Get(ctx, s.client, s.bucketsURL(), s.header())
	if err == nil {
		return nil
	}

	var httpErr *netx.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: authentication failed, the token needs R2:Edit permissions", common.ErrConnection)
	}
	return fmt.Errorf("%w: %v", common.ErrConnection, err)
}

var _ Store = (*R2APIStore)(nil)
