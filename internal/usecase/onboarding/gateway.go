package onboarding

import (
	"context"
	"fmt"
	"net/http"

	"careerconnect/internal/infrastructure/upstream"
	"careerconnect/internal/pkg/session"

	"github.com/mitchellh/mapstructure"
)

const (
	startPath    = "/api/onboarding/start"
	completePath = "/api/onboarding/complete"
)

type StartRequest struct {
	UserID     string `json:"userId"`
	UserType   string `json:"userType"`
	TotalSteps int    `json:"totalSteps"`
}

type CompleteRequest struct {
	UserID   string         `json:"userId"`
	UserType string         `json:"userType"`
	Answers  map[string]any `json:"answers"`
}

// Progress is the remote progress record as far as the backend reports it.
// The response shape is provider defined, so decoding is lenient.
type Progress struct {
	UserID      string `json:"user_id" mapstructure:"userId"`
	UserType    string `json:"user_type" mapstructure:"userType"`
	CurrentStep int    `json:"current_step" mapstructure:"currentStep"`
	TotalSteps  int    `json:"total_steps" mapstructure:"totalSteps"`
}

// Gateway is the onboarding slice of the upstream backend.
type Gateway interface {
	Start(ctx context.Context, req StartRequest, creds *session.Credentials) (Progress, error)
	Complete(ctx context.Context, req CompleteRequest, creds *session.Credentials) error
}

type UpstreamGateway struct {
	client *upstream.Client
}

func NewUpstreamGateway(client *upstream.Client) *UpstreamGateway {
	return &UpstreamGateway{client: client}
}

func (g *UpstreamGateway) Start(ctx context.Context, req StartRequest, creds *session.Credentials) (Progress, error) {
	resp, err := g.client.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        startPath,
		Body:        req,
		Credentials: creds,
	})
	if err != nil {
		return Progress{}, err
	}

	p := Progress{UserID: req.UserID, UserType: req.UserType, TotalSteps: req.TotalSteps}
	if len(resp.Body) == 0 {
		return p, nil
	}

	var raw map[string]any
	if err := resp.Decode(&raw); err != nil {
		// A non-object success body still counts as started.
		return p, nil
	}
	if data, ok := raw["data"].(map[string]any); ok {
		raw = data
	}
	if err := decodeLoose(raw, &p); err != nil {
		return Progress{}, fmt.Errorf("decode onboarding progress: %w", err)
	}
	return p, nil
}

func (g *UpstreamGateway) Complete(ctx context.Context, req CompleteRequest, creds *session.Credentials) error {
	_, err := g.client.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        completePath,
		Body:        req,
		Credentials: creds,
	})
	return err
}

func decodeLoose(in map[string]any, out *Progress) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

var _ Gateway = (*UpstreamGateway)(nil)
