// Package ledger talks to the external immutable ledger over its GraphQL
// HTTP API. The ledger is used purely as an append-only metadata
// registry: one CREATE transaction per uploaded file, queried back by
// transaction id at download time. Consensus mechanics are opaque here.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/ledgervault/internal/common"
)

// submitMutation creates an asset-carrying transaction signed by the
// configured signer and directed at the configured recipient.
const submitMutation = `
	mutation ($operation: String!, $amount: Int!, $signerPublicKey: String!, $signerPrivateKey: String!, $recipientPublicKey: String!, $asset: String!) {
		postTransaction(
			data: {
				operation: $operation,
				amount: $amount,
				signerPublicKey: $signerPublicKey,
				signerPrivateKey: $signerPrivateKey,
				recipientPublicKey: $recipientPublicKey,
				asset: $asset
			}
		){id}
	}
`

const fetchQuery = `
	query ($id: ID!) {
		getTransaction(id: $id) {
			asset
		}
	}
`

// transactionAmount is the nominal amount attached to every CREATE
// transaction. The backend requires a positive value; it carries no
// meaning for file storage.
const transactionAmount = 10

// Config holds the ledger endpoint and the identities used to sign
// transactions. Assembled once at process start and injected.
type Config struct {
	Endpoint           string
	SignerPublicKey    string
	SignerPrivateKey   string
	RecipientPublicKey string
}

// Client is the GraphQL ledger client.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient builds a Client for the given endpoint and identities. If
// httpClient is nil, http.DefaultClient is used; callers that need
// timeouts beyond context cancellation should pass their own.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, cfg: cfg}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// Submit posts an asset-creation transaction carrying the serialized
// file record and returns the resulting transaction id. Backend-reported
// validation failures surface as common.ErrLedgerUnavailable along with
// transport errors; the ledger's acceptance rules are not interpreted.
func (c *Client) Submit(ctx context.Context, assetPayload string) (string, error) {
	variables := map[string]any{
		"operation":          "CREATE",
		"amount":             transactionAmount,
		"signerPublicKey":    c.cfg.SignerPublicKey,
		"signerPrivateKey":   c.cfg.SignerPrivateKey,
		"recipientPublicKey": c.cfg.RecipientPublicKey,
		"asset":              assetPayload,
	}

	var result struct {
		PostTransaction struct {
			ID string `json:"id"`
		} `json:"postTransaction"`
	}
	if err := c.do(ctx, submitMutation, variables, &result); err != nil {
		return "", err
	}

	if result.PostTransaction.ID == "" {
		return "", fmt.Errorf("%w: transaction id missing in response", common.ErrLedgerUnavailable)
	}
	return result.PostTransaction.ID, nil
}

// Fetch queries the transaction with the given id and returns its asset
// payload as whatever shape the backend produced (string or structured
// value); AssetCodec is responsible for interpreting it. An absent
// transaction is common.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, txID string) (any, error) {
	var result struct {
		GetTransaction *struct {
			Asset any `json:"asset"`
		} `json:"getTransaction"`
	}
	if err := c.do(ctx, fetchQuery, map[string]any{"id": txID}, &result); err != nil {
		return nil, err
	}

	if result.GetTransaction == nil {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, txID)
	}
	return result.GetTransaction.Asset, nil
}

// do executes one GraphQL request and decodes the data field into out.
func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", common.ErrLedgerUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrLedgerUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s: %s", common.ErrLedgerUnavailable, resp.Status, string(b))
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("%w: decode response: %v", common.ErrLedgerUnavailable, err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("%w: %s", common.ErrLedgerUnavailable, gqlResp.Errors[0].Message)
	}
	if len(gqlResp.Data) == 0 {
		return fmt.Errorf("%w: empty response data", common.ErrLedgerUnavailable)
	}

	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", common.ErrLedgerUnavailable, err)
	}
	return nil
}
