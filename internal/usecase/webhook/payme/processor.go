package payme

import (
	"context"
	"encoding/json"
	"errors"

	"payhook/internal/usecase/interfaces"
	"payhook/internal/usecase/webhook"

	"go.uber.org/zap"
)

// DefaultLogin is the fixed identity Payme sends in the Basic credential.
const DefaultLogin = "Paycom"

// PrepareTTLMillis is how long a PREPARED transaction keeps its external id
// before a new CreateTransaction may replace it.
const PrepareTTLMillis int64 = 12 * 60 * 60 * 1000

// Merchant API methods.
const (
	MethodCheckPerformTransaction = "CheckPerformTransaction"
	MethodCreateTransaction       = "CreateTransaction"
	MethodPerformTransaction      = "PerformTransaction"
	MethodCancelTransaction       = "CancelTransaction"
	MethodCheckTransaction        = "CheckTransaction"
	MethodGetStatement            = "GetStatement"
)

type Config struct {
	Login string
	Key   string
}

// Processor implements the Payme Merchant API.
type Processor struct {
	cfg       Config
	repo      interfaces.ITransactionRepository
	lifecycle *webhook.Lifecycle
	fiscal    interfaces.IFiscalDataProvider
	logger    *zap.Logger
	methods   *webhook.Dispatcher[string, json.RawMessage]
}

var _ webhook.Processor = (*Processor)(nil)

func NewProcessor(cfg Config, repo interfaces.ITransactionRepository, callbacks interfaces.Callbacks, logger *zap.Logger, opts ...webhook.Option) (*Processor, error) {
	if cfg.Key == "" {
		return nil, webhook.ErrMissingCredentials
	}
	if callbacks.Payments == nil {
		return nil, webhook.ErrMissingCallbacks
	}
	if cfg.Login == "" {
		cfg.Login = DefaultLogin
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("payme")

	p := &Processor{
		cfg:       cfg,
		repo:      repo,
		lifecycle: webhook.NewLifecycle(repo, callbacks.Payments, logger, opts...),
		fiscal:    callbacks.Fiscal,
		logger:    logger,
	}
	p.methods = webhook.NewDispatcher(map[string]webhook.MethodFunc[json.RawMessage]{
		MethodCheckPerformTransaction: p.checkPerformTransaction,
		MethodCreateTransaction:       p.createTransaction,
		MethodPerformTransaction:      p.performTransaction,
		MethodCancelTransaction:       p.cancelTransaction,
		MethodCheckTransaction:        p.checkTransaction,
		MethodGetStatement:            p.getStatement,
	})
	return p, nil
}

// Handle always answers with HTTP 200; failures travel in the error member.
func (p *Processor) Handle(ctx context.Context, req webhook.Request) webhook.Response {
	if !webhook.VerifyBasic(req.Authorization, p.cfg.Login, p.cfg.Key) {
		p.logger.Warn("[payme][processor] authorization rejected")
		return webhook.OK(rpcResponse{Error: errInsufficientPrivilege.err(), ID: zeroID})
	}

	rpc, perr := decodeRequest(req.Body)
	if perr != nil {
		return webhook.OK(rpcResponse{Error: perr, ID: rpc.ID})
	}

	result, err := p.methods.Dispatch(ctx, rpc.Method, rpc.Params)
	return webhook.OK(p.encode(rpc, result, err))
}

func (p *Processor) encode(rpc rpcRequest, result any, err error) rpcResponse {
	if err == nil {
		return rpcResponse{Result: result, ID: rpc.ID}
	}

	var perr *Error
	switch {
	case errors.As(err, &perr):
		return rpcResponse{Error: perr, ID: rpc.ID}
	case errors.Is(err, webhook.ErrMethodNotFound):
		return rpcResponse{Error: errMethodNotFound.withData(rpc.Method), ID: rpc.ID}
	default:
		p.logger.Error("[payme][processor] method failed",
			zap.String("method", rpc.Method), zap.String("id", rpc.ID.String()), zap.Error(err))
		return rpcResponse{Error: errInternal.err(), ID: rpc.ID}
	}
}
