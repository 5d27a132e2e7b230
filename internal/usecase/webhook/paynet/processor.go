package paynet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"payhook/internal/usecase/interfaces"
	"payhook/internal/usecase/webhook"

	"go.uber.org/zap"
)

// TimestampLayout is the local time format used in every Paynet answer and statement query.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultLocation is the merchant time zone when none is configured.
const DefaultLocation = "Asia/Tashkent"

// JSON-RPC methods.
const (
	MethodGetInformation     = "GetInformation"
	MethodPerformTransaction = "PerformTransaction"
	MethodCheckTransaction   = "CheckTransaction"
	MethodCancelTransaction  = "CancelTransaction"
	MethodGetStatement       = "GetStatement"
	MethodChangePassword     = "ChangePassword"
)

type Config struct {
	Username  string
	Password  string
	ServiceID string
	Location  *time.Location
}

// Processor implements the Paynet JSON-RPC 2.0 provider API.
type Processor struct {
	cfg       Config
	repo      interfaces.ITransactionRepository
	lifecycle *webhook.Lifecycle
	userInfo  interfaces.IUserInfoProvider
	passwords interfaces.IPasswordRotator
	logger    *zap.Logger
	methods   *webhook.Dispatcher[string, json.RawMessage]
}

var _ webhook.Processor = (*Processor)(nil)

func NewProcessor(cfg Config, repo interfaces.ITransactionRepository, callbacks interfaces.Callbacks, logger *zap.Logger, opts ...webhook.Option) (*Processor, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, webhook.ErrMissingCredentials
	}
	if callbacks.Payments == nil {
		return nil, webhook.ErrMissingCallbacks
	}
	if cfg.Location == nil {
		loc, err := time.LoadLocation(DefaultLocation)
		if err != nil {
			loc = time.FixedZone("UZT", 5*60*60)
		}
		cfg.Location = loc
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("paynet")

	p := &Processor{
		cfg:       cfg,
		repo:      repo,
		lifecycle: webhook.NewLifecycle(repo, callbacks.Payments, logger, opts...),
		userInfo:  callbacks.UserInfo,
		passwords: callbacks.Passwords,
		logger:    logger,
	}
	p.methods = webhook.NewDispatcher(map[string]webhook.MethodFunc[json.RawMessage]{
		MethodGetInformation:     p.getInformation,
		MethodPerformTransaction: p.performTransaction,
		MethodCheckTransaction:   p.checkTransaction,
		MethodCancelTransaction:  p.cancelTransaction,
		MethodGetStatement:       p.getStatement,
		MethodChangePassword:     p.changePassword,
	})
	return p, nil
}

// Handle answers 401 on bad credentials and 200 for everything else.
func (p *Processor) Handle(ctx context.Context, req webhook.Request) webhook.Response {
	if !webhook.VerifyBasic(req.Authorization, p.cfg.Username, p.cfg.Password) {
		p.logger.Warn("[paynet][processor] authorization rejected")
		return webhook.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       rpcResponse{JSONRPC: jsonrpcVersion, ID: nullID, Error: errAccessDenied.err()},
		}
	}

	rpc, perr := decodeRequest(req.Body)
	if perr != nil {
		return webhook.OK(rpcResponse{JSONRPC: jsonrpcVersion, ID: rpc.ID, Error: perr})
	}
	if err := p.checkService(rpc.Params); err != nil {
		return webhook.OK(p.encode(rpc, nil, err))
	}

	result, err := p.methods.Dispatch(ctx, rpc.Method, rpc.Params)
	return webhook.OK(p.encode(rpc, result, err))
}

// checkService rejects a serviceId that differs from the configured one.
func (p *Processor) checkService(params json.RawMessage) error {
	var scope struct {
		ServiceID webhook.FlexString `json:"serviceId"`
	}
	if err := decodeParams(params, &scope); err != nil {
		return err
	}
	if scope.ServiceID != "" && p.cfg.ServiceID != "" && scope.ServiceID.String() != p.cfg.ServiceID {
		return errServiceNotFound.err()
	}
	return nil
}

func (p *Processor) encode(rpc rpcRequest, result any, err error) rpcResponse {
	resp := rpcResponse{JSONRPC: jsonrpcVersion, ID: rpc.ID}
	if err == nil {
		resp.Result = result
		return resp
	}

	var perr *Error
	switch {
	case errors.As(err, &perr):
		resp.Error = perr
	case errors.Is(err, webhook.ErrMethodNotFound):
		resp.Error = errMethodNotFound.withData(rpc.Method)
	default:
		p.logger.Error("[paynet][processor] method failed",
			zap.String("method", rpc.Method), zap.ByteString("id", rpc.ID), zap.Error(err))
		resp.Error = errInternal.err()
	}
	return resp
}

func (p *Processor) timestamp(ms int64) string {
	return time.UnixMilli(ms).In(p.cfg.Location).Format(TimestampLayout)
}

func (p *Processor) parseTimestamp(s string) (int64, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, p.cfg.Location)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
