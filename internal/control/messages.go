package control

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/cwbudde/algo-comp/dsp/params"
)

type request struct {
	Type  string   `json:"type"`
	Param string   `json:"param,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Label string   `json:"label,omitempty"`
	TS    any      `json:"ts,omitempty"`
}

type paramsReply struct {
	Type            string    `json:"type"`
	Threshold       float64   `json:"threshold"`
	Attack          float64   `json:"attack"`
	Release         float64   `json:"release"`
	Ratio           float64   `json:"ratio"`
	RatioIndex      int       `json:"ratioIndex"`
	GainReductionDB []float64 `json:"gainReductionDb"`
}

type descriptor struct {
	ID      params.ID `json:"id"`
	Name    string    `json:"name"`
	Unit    string    `json:"unit"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Default float64   `json:"default"`
	Step    float64   `json:"step,omitempty"`
	Choices []string  `json:"choices,omitempty"`
}

type descriptorsReply struct {
	Type   string       `json:"type"`
	Params []descriptor `json:"params"`
}

type pongReply struct {
	Type string `json:"type"`
	TS   any    `json:"ts,omitempty"`
}

type errorReply struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

var (
	errMissingValue = errors.New("missing value")
	errInvalidJSON  = errors.New("invalid json")
)

// handle decodes one control message and returns the reply to send.
func (s *Server) handle(data []byte) any {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorReply{Type: "error", Detail: errInvalidJSON.Error()}
	}

	switch req.Type {
	case "ping":
		return pongReply{Type: "pong", TS: req.TS}
	case "get":
		return s.snapshot()
	case "describe":
		return describe()
	case "set":
		if err := s.set(req); err != nil {
			return errorReply{Type: "error", Detail: err.Error()}
		}
		return s.snapshot()
	default:
		return errorReply{Type: "error", Detail: "unknown message type"}
	}
}

func (s *Server) set(req request) error {
	id := params.ID(req.Param)

	value := 0.0
	switch {
	case req.Value != nil:
		value = *req.Value
	case id == params.Ratio && req.Label != "":
		v, err := params.ParseRatio(req.Label)
		if err != nil {
			return err
		}
		value = v
	default:
		return errMissingValue
	}

	if err := s.store.Set(id, value); err != nil {
		return err
	}

	log.Debug().Str("param", req.Param).Float64("value", value).Msg("parameter set")
	return nil
}

func (s *Server) snapshot() paramsReply {
	p := s.store.Snapshot()
	reply := paramsReply{
		Type:            "params",
		Threshold:       p.ThresholdDB,
		Attack:          p.AttackMs,
		Release:         p.ReleaseMs,
		Ratio:           p.Ratio,
		RatioIndex:      s.store.RatioIndex(),
		GainReductionDB: []float64{},
	}

	if s.meter != nil {
		for ch := range s.meter.NumChannels() {
			reply.GainReductionDB = append(reply.GainReductionDB, s.meter.GainReductionDB(ch))
		}
	}

	return reply
}

func describe() descriptorsReply {
	ds := params.Descriptors()
	out := make([]descriptor, len(ds))
	for i, d := range ds {
		out[i] = descriptor{
			ID:      d.ID,
			Name:    d.Name,
			Unit:    d.Unit,
			Min:     d.Min,
			Max:     d.Max,
			Default: d.Default,
			Step:    d.Step,
			Choices: d.Choices,
		}
	}
	return descriptorsReply{Type: "descriptors", Params: out}
}
