package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"vrcheck/internal/violation"
	"vrcheck/internal/vr"
)

// maxExact bounds the integers a Struct number carries. 2^53 itself is
// excluded since 2^53+1 rounds to it.
const maxExact = 1 << 53

// Request asks for one snapshot of a session to be checked.
type Request struct {
	Session  string
	Step     uint64
	Quorum   int // 0 lets the server derive it
	Snapshot vr.Snapshot[vr.Entry]
}

// Report is the outcome of checking one Request.
type Report struct {
	OK         bool
	Session    string
	Step       uint64
	Quorum     int
	Violations []violation.Violation
}

// EncodeRequest converts a Request to a Struct.
func EncodeRequest(req Request) (*structpb.Struct, error) {
	if req.Step >= maxExact {
		return nil, fmt.Errorf("step %d is not below 2^53", req.Step)
	}
	if int64(req.Quorum) >= maxExact {
		return nil, fmt.Errorf("quorum %d is not below 2^53", req.Quorum)
	}
	replicas := make([]any, 0, len(req.Snapshot))
	for i, r := range req.Snapshot {
		if r.Ctx.Epoch >= maxExact || r.Ctx.View >= maxExact || r.Ctx.CommitNum >= maxExact {
			return nil, fmt.Errorf("%s: epoch, view and commit_num must be below 2^53", r.Describe(i))
		}
		log := make([]any, 0, len(r.Ctx.Log))
		for j, e := range r.Ctx.Log {
			if e.RequestNum >= maxExact {
				return nil, fmt.Errorf("%s: log[%d]: request_num %d is not below 2^53", r.Describe(i), j, e.RequestNum)
			}
			log = append(log, map[string]any{
				"client_id":   e.ClientID,
				"request_num": e.RequestNum,
				"op":          e.Op,
			})
		}
		replicas = append(replicas, map[string]any{
			"id":         r.ID,
			"role":       r.Role.String(),
			"epoch":      r.Ctx.Epoch,
			"view":       r.Ctx.View,
			"commit_num": r.Ctx.CommitNum,
			"log":        log,
		})
	}
	st, err := structpb.NewStruct(map[string]any{
		"session":  req.Session,
		"step":     req.Step,
		"quorum":   req.Quorum,
		"replicas": replicas,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return st, nil
}

// DecodeRequest converts a Struct back to a Request. Role labels go
// through vr.ParseRole, so unknown or differently-cased labels decode
// as vr.RoleUnrecognized.
func DecodeRequest(st *structpb.Struct) (Request, error) {
	f := fields(st)
	var (
		req Request
		err error
	)
	if req.Session, err = optString(f, "session"); err != nil {
		return Request{}, err
	}
	if req.Step, err = optUint(f, "step"); err != nil {
		return Request{}, err
	}
	q, err := optUint(f, "quorum")
	if err != nil {
		return Request{}, err
	}
	req.Quorum = int(q)

	list, err := optList(f, "replicas")
	if err != nil {
		return Request{}, err
	}
	req.Snapshot = make(vr.Snapshot[vr.Entry], 0, len(list))
	for i, v := range list {
		r, err := decodeReplica(v)
		if err != nil {
			return Request{}, fmt.Errorf("replicas[%d]: %w", i, err)
		}
		req.Snapshot = append(req.Snapshot, r)
	}
	return req, nil
}

func decodeReplica(v *structpb.Value) (vr.Replica[vr.Entry], error) {
	st := v.GetStructValue()
	if st == nil {
		return vr.Replica[vr.Entry]{}, fmt.Errorf("expected an object")
	}
	f := st.GetFields()

	var (
		r   vr.Replica[vr.Entry]
		err error
	)
	if r.ID, err = optString(f, "id"); err != nil {
		return r, err
	}
	role, err := optString(f, "role")
	if err != nil {
		return r, err
	}
	r.Role = vr.ParseRole(role)
	if r.Ctx.Epoch, err = optUint(f, "epoch"); err != nil {
		return r, err
	}
	if r.Ctx.View, err = optUint(f, "view"); err != nil {
		return r, err
	}
	if r.Ctx.CommitNum, err = optUint(f, "commit_num"); err != nil {
		return r, err
	}
	log, err := optList(f, "log")
	if err != nil {
		return r, err
	}
	r.Ctx.Log = make([]vr.Entry, 0, len(log))
	for i, lv := range log {
		est := lv.GetStructValue()
		if est == nil {
			return r, fmt.Errorf("log[%d]: expected an object", i)
		}
		ef := est.GetFields()
		var e vr.Entry
		if e.ClientID, err = optString(ef, "client_id"); err != nil {
			return r, fmt.Errorf("log[%d]: %w", i, err)
		}
		if e.RequestNum, err = optUint(ef, "request_num"); err != nil {
			return r, fmt.Errorf("log[%d]: %w", i, err)
		}
		if e.Op, err = optString(ef, "op"); err != nil {
			return r, fmt.Errorf("log[%d]: %w", i, err)
		}
		r.Ctx.Log = append(r.Ctx.Log, e)
	}
	return r, nil
}

// EncodeReport converts a Report to a Struct.
func EncodeReport(rep Report) (*structpb.Struct, error) {
	if rep.Step >= maxExact {
		return nil, fmt.Errorf("step %d is not below 2^53", rep.Step)
	}
	vs := make([]any, 0, len(rep.Violations))
	for _, v := range rep.Violations {
		vs = append(vs, map[string]any{
			"invariant": v.Invariant,
			"kind":      v.Kind.String(),
			"message":   v.Message,
			"left":      v.Left,
			"right":     v.Right,
			"index":     v.Index,
		})
	}
	st, err := structpb.NewStruct(map[string]any{
		"ok":         rep.OK,
		"session":    rep.Session,
		"step":       rep.Step,
		"quorum":     rep.Quorum,
		"violations": vs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return st, nil
}

// DecodeReport converts a Struct back to a Report.
func DecodeReport(st *structpb.Struct) (Report, error) {
	f := fields(st)
	var (
		rep Report
		err error
	)
	rep.OK = f["ok"].GetBoolValue()
	if rep.Session, err = optString(f, "session"); err != nil {
		return Report{}, err
	}
	if rep.Step, err = optUint(f, "step"); err != nil {
		return Report{}, err
	}
	q, err := optUint(f, "quorum")
	if err != nil {
		return Report{}, err
	}
	rep.Quorum = int(q)

	list, err := optList(f, "violations")
	if err != nil {
		return Report{}, err
	}
	for i, v := range list {
		vst := v.GetStructValue()
		if vst == nil {
			return Report{}, fmt.Errorf("violations[%d]: expected an object", i)
		}
		vf := vst.GetFields()
		viol := violation.Violation{
			Invariant: vf["invariant"].GetStringValue(),
			Kind:      violation.ParseKind(vf["kind"].GetStringValue()),
			Message:   vf["message"].GetStringValue(),
			Left:      vf["left"].GetStringValue(),
			Right:     vf["right"].GetStringValue(),
			Index:     int(vf["index"].GetNumberValue()),
		}
		rep.Violations = append(rep.Violations, viol)
	}
	return rep, nil
}

// MarshalJSON renders a Struct with protojson, the form kept in trace
// storage.
func MarshalJSON(st *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(st)
}

// UnmarshalJSON parses the output of MarshalJSON.
func UnmarshalJSON(data []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

func fields(st *structpb.Struct) map[string]*structpb.Value {
	return st.GetFields()
}

func optString(f map[string]*structpb.Value, key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s: expected a string", key)
	}
	return s.StringValue, nil
}

func optUint(f map[string]*structpb.Value, key string) (uint64, error) {
	v, ok := f[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s: expected a number", key)
	}
	x := n.NumberValue
	if x < 0 || x >= maxExact || x != math.Trunc(x) {
		return 0, fmt.Errorf("%s: %v is not a non-negative integer below 2^53", key, x)
	}
	return uint64(x), nil
}

func optList(f map[string]*structpb.Value, key string) ([]*structpb.Value, error) {
	v, ok := f[key]
	if !ok {
		return nil, nil
	}
	l, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list", key)
	}
	return l.ListValue.GetValues(), nil
}
