package concierge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/mall-concierge/agent/account"
	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
	"github.com/tanpawarit/mall-concierge/agent/mall"
	"github.com/tanpawarit/mall-concierge/agent/tool"
)

type fakeToolCallingModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	repeat    *schema.Message
	err       error
	inputs    [][]*schema.Message
	boundWith []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, append([]*schema.Message(nil), input...))
	if f.err != nil {
		return nil, f.err
	}
	if f.repeat != nil {
		return f.repeat, nil
	}
	idx := len(f.inputs) - 1
	if idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	return f.responses[idx], nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.boundWith = tools
	return f, nil
}

func (f *fakeToolCallingModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

type recordingGateway struct {
	contractx.ToolGateway
	requests []contractx.ToolRequest
}

func (r *recordingGateway) Execute(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	r.requests = append(r.requests, req)
	return r.ToolGateway.Execute(ctx, req)
}

func toolCall(id, name, args string) schema.ToolCall {
	return schema.ToolCall{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}
}

func newTestConcierge(t *testing.T, fake *fakeToolCallingModel, seed account.Snapshot) (*Concierge, *recordingGateway, *account.Ledger) {
	t.Helper()

	ledger, err := account.Open(context.Background(), account.NewMemorySnapshotter(seed))
	if err != nil {
		t.Fatalf("account.Open() error = %v", err)
	}
	registry, err := tool.New(mall.DubaiMall(), ledger, tool.WithCodeGenerator(func() string { return "COFFEE01" }))
	if err != nil {
		t.Fatalf("tool.New() error = %v", err)
	}
	gateway := &recordingGateway{ToolGateway: registry}

	c, err := New(context.Background(), fake, gateway, "you are a concierge")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, gateway, ledger
}

func decodeToolTurn(t *testing.T, msg *schema.Message) contractx.ToolResult {
	t.Helper()

	if msg.Role != schema.Tool {
		t.Fatalf("expected tool turn, got role %s", msg.Role)
	}
	var res contractx.ToolResult
	if err := json.Unmarshal([]byte(msg.Content), &res); err != nil {
		t.Fatalf("decode tool turn: %v", err)
	}
	return res
}

func TestChatPlainAnswer(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{schema.AssistantMessage("Marhaba! How can I help?", nil)},
	}
	c, _, _ := newTestConcierge(t, fake, nil)

	reply, err := c.Chat(context.Background(), Request{UserID: "demo_user", Message: "hi"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !reply.Converged || reply.Rounds != 1 {
		t.Fatalf("unexpected reply: %#v", reply)
	}
	if reply.Text != "Marhaba! How can I help?" {
		t.Fatalf("unexpected text: %s", reply.Text)
	}
	if len(reply.History) != 2 || reply.History[0].Role != schema.User || reply.History[1].Role != schema.Assistant {
		t.Fatalf("unexpected history: %#v", reply.History)
	}
	if len(fake.boundWith) != 4 {
		t.Fatalf("expected four tools bound, got %d", len(fake.boundWith))
	}
	if fake.inputs[0][0].Role != schema.System {
		t.Fatal("first model input must be the system prompt")
	}
}

func TestChatSingleToolRoundTrip(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{toolCall("call-1", "find_parking", `{"plate_number":"DXB-1234"}`)}),
			schema.AssistantMessage("Your car is at B2-A05.", nil),
		},
	}
	c, _, _ := newTestConcierge(t, fake, nil)

	prior := []*schema.Message{schema.UserMessage("hello"), schema.AssistantMessage("Marhaba!", nil)}
	reply, err := c.Chat(context.Background(), Request{UserID: "demo_user", Message: "Where is my car? DXB-1234", History: prior})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if fake.calls() != 2 || reply.Rounds != 2 || !reply.Converged {
		t.Fatalf("unexpected rounds: calls=%d reply=%#v", fake.calls(), reply)
	}
	if len(prior) != 2 {
		t.Fatal("caller history must not be modified")
	}

	// prior(2) + user + assistant(tool calls) + tool + assistant
	if len(reply.History) != 6 {
		t.Fatalf("unexpected history length: %d", len(reply.History))
	}
	if reply.History[3].ToolCalls[0].ID != "call-1" || reply.History[4].ToolCallID != "call-1" {
		t.Fatal("tool call id must be preserved in both turns")
	}
	if reply.History[4].ToolName != "find_parking" {
		t.Fatalf("tool turn name = %q, want find_parking", reply.History[4].ToolName)
	}
	res := decodeToolTurn(t, reply.History[4])
	if !res.Success || res.Tool != "find_parking" {
		t.Fatalf("unexpected tool result: %#v", res)
	}

	second := fake.inputs[1]
	if second[len(second)-1].Role != schema.Tool {
		t.Fatal("second round must see the tool turn")
	}
}

func TestChatStopsAtRoundCeiling(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		repeat: schema.AssistantMessage("", []schema.ToolCall{toolCall("call-x", "get_shop_info", `{"shop_name":"Zara"}`)}),
	}
	c, gateway, _ := newTestConcierge(t, fake, nil)

	reply, err := c.Chat(context.Background(), Request{UserID: "demo_user", Message: "loop forever"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if fake.calls() != MaxRounds {
		t.Fatalf("model called %d times, want %d", fake.calls(), MaxRounds)
	}
	if reply.Converged || reply.Text != "" || reply.Rounds != MaxRounds {
		t.Fatalf("unexpected reply: %#v", reply)
	}
	if len(gateway.requests) != MaxRounds {
		t.Fatalf("expected %d tool executions, got %d", MaxRounds, len(gateway.requests))
	}
}

func TestChatUnknownToolBecomesFailureTurn(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{toolCall("call-1", "book_taxi", `{}`)}),
			schema.AssistantMessage("Sorry, I cannot book taxis.", nil),
		},
	}
	c, gateway, _ := newTestConcierge(t, fake, nil)

	reply, err := c.Chat(context.Background(), Request{UserID: "demo_user", Message: "book me a taxi"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.History[2].ToolName != "book_taxi" {
		t.Fatalf("tool turn name = %q, want book_taxi", reply.History[2].ToolName)
	}
	res := decodeToolTurn(t, reply.History[2])
	if res.Success || res.Error == "" {
		t.Fatalf("expected failure result with error, got %#v", res)
	}
	if len(gateway.requests) != 0 {
		t.Fatal("unknown tool must not reach the gateway")
	}
	if !reply.Converged {
		t.Fatal("loop should continue after a failed tool")
	}
}

func TestChatMalformedArgumentsBecomeFailureTurn(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{
				toolCall("call-1", "find_parking", `{"plate_number":`),
				toolCall("call-2", "redeem_coupon", `{"coupon_type":"Coffee voucher"}`),
			}),
			schema.AssistantMessage("Could you repeat that?", nil),
		},
	}
	c, _, _ := newTestConcierge(t, fake, nil)

	reply, err := c.Chat(context.Background(), Request{UserID: "demo_user", Message: "?"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	for _, idx := range []int{2, 3} {
		res := decodeToolTurn(t, reply.History[idx])
		if res.Success {
			t.Fatalf("history[%d] should be a failure: %#v", idx, res)
		}
	}
}

func TestChatInjectsCallerUserID(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{
				toolCall("call-1", "add_points", `{"amount":30,"reason":"trivia","user_id":"attacker"}`),
				toolCall("call-2", "redeem_coupon", `{"coupon_type":"Coffee voucher","points_cost":30}`),
			}),
			schema.AssistantMessage("Enjoy your coffee!", nil),
		},
	}
	c, gateway, ledger := newTestConcierge(t, fake, nil)

	reply, err := c.Chat(context.Background(), Request{UserID: "guest-7", Message: "I answered the trivia"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !reply.Converged {
		t.Fatalf("unexpected reply: %#v", reply)
	}
	for _, req := range gateway.requests {
		if req.Args[tool.UserIDArg] != "guest-7" {
			t.Fatalf("user id not injected for %s: %#v", req.Tool, req.Args)
		}
	}

	snap := ledger.Snapshot()
	if _, ok := snap["attacker"]; ok {
		t.Fatal("model-supplied user id must be ignored")
	}
	acc := snap["guest-7"]
	if acc.Points != 0 || len(acc.Coupons) != 1 || acc.Coupons[0].Code != "COFFEE01" {
		t.Fatalf("unexpected account: %#v", acc)
	}
}

func TestChatModelFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("boom")}
	c, _, _ := newTestConcierge(t, fake, nil)

	_, err := c.Chat(context.Background(), Request{UserID: "demo_user", Message: "hi"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestChatValidation(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestConcierge(t, &fakeToolCallingModel{}, nil)

	if _, err := c.Chat(context.Background(), Request{UserID: "", Message: "hi"}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty user, got %v", err)
	}
	if _, err := c.Chat(context.Background(), Request{UserID: "demo_user", Message: "  "}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty message, got %v", err)
	}
}

func TestMissingCredential(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), nil, &recordingGateway{}, "prompt")
	if !errors.Is(err, contractx.ErrMissingCredential) {
		t.Fatalf("New(nil model) error = %v, want ErrMissingCredential", err)
	}

	c := Unavailable(nil)
	_, err = c.Chat(context.Background(), Request{UserID: "demo_user", Message: "hi"})
	if !errors.Is(err, contractx.ErrMissingCredential) {
		t.Fatalf("Chat() error = %v, want ErrMissingCredential", err)
	}
}
