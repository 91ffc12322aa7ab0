package checkout

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/code"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/settlement"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// mockCodeResolver implements CodeResolver for testing
type mockCodeResolver struct {
	Resolution  *code.Resolution            // Returned for any code when Resolutions is nil
	Resolutions map[string]*code.Resolution // Per-code results keyed by raw code
	Err         error
	Calls       int
}

func (m *mockCodeResolver) Resolve(_ context.Context, raw string, _ int64, _ string) (*code.Resolution, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Resolutions != nil {
		if res, ok := m.Resolutions[raw]; ok {
			return res, nil
		}
		return &code.Resolution{Valid: false, Type: code.CodeTypeInvalid, Reason: "Invalid code"}, nil
	}
	return m.Resolution, nil
}

// mockMethodGetter implements MethodGetter for testing
type mockMethodGetter struct {
	Methods map[string]*shipping.Method
}

func (m *mockMethodGetter) Get(_ context.Context, id string) (*shipping.Method, error) {
	if method, ok := m.Methods[id]; ok {
		return method, nil
	}
	return nil, fmt.Errorf("shipping method %q not found", id)
}

// mockCreditReader implements CreditReader for testing
type mockCreditReader struct {
	Balance int64
	Err     error
}

func (m *mockCreditReader) Available(_ context.Context, _ string) (int64, error) {
	return m.Balance, m.Err
}

// mockAllocator implements order.Allocator for testing
type mockAllocator struct {
	Number int64
	Err    error
	Calls  int
}

func (m *mockAllocator) Next(_ context.Context) (int64, error) {
	m.Calls++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Number, nil
}

// mockSettler implements Settler for testing
type mockSettler struct {
	Artifact *settlement.Artifact
	Err      error
	Calls    int
	Request  *settlement.Request // Captures the last settlement request
	Method   order.PaymentMethod
}

func (m *mockSettler) Settle(_ context.Context, method order.PaymentMethod, req *settlement.Request) (*settlement.Artifact, error) {
	m.Calls++
	m.Method = method
	m.Request = req
	if m.Err != nil {
		return nil, &settlement.Error{Method: method, Err: m.Err}
	}
	return m.Artifact, nil
}

// mockRecorder implements Recorder for testing
type mockRecorder struct {
	Result *ledger.Result
	Err    error
	Calls  int
	Order  *order.Order // Captures the recorded order
	Usage  *ledger.Usage
}

func (m *mockRecorder) Record(_ context.Context, o *order.Order, usage *ledger.Usage) (*ledger.Result, error) {
	m.Calls++
	m.Order = o
	m.Usage = usage
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &ledger.Result{}, nil
}
