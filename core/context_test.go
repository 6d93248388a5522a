package core

import (
	"testing"

	"github.com/rushteam/animerec/pkg/utils"
)

func TestRecommendContext_Params(t *testing.T) {
	rctx := &RecommendContext{Params: map[string]any{
		ParamUserWeight: 0.8,
		ParamTopN:       5,
		"bad":           "x",
	}}

	if got := rctx.ParamFloat(ParamUserWeight, 0.5); got != 0.8 {
		t.Errorf("ParamFloat(user_weight) = %v, want 0.8", got)
	}
	if got := rctx.ParamFloat(ParamContentWeight, 0.5); got != 0.5 {
		t.Errorf("ParamFloat(missing) = %v, want default", got)
	}
	if got := rctx.ParamInt(ParamTopN, 10); got != 5 {
		t.Errorf("ParamInt(top_n) = %v, want 5", got)
	}
	if got := rctx.ParamInt("bad", 10); got != 10 {
		t.Errorf("ParamInt(bad) = %v, want default", got)
	}

	var nilCtx *RecommendContext
	if got := nilCtx.ParamInt(ParamTopN, 3); got != 3 {
		t.Errorf("nil ParamInt() = %v, want 3", got)
	}
}

func TestRecommendContext_Labels(t *testing.T) {
	rctx := &RecommendContext{}
	if _, ok := rctx.GetLabel("skipped_candidates"); ok {
		t.Fatal("GetLabel() on empty context should miss")
	}
	rctx.PutLabel("skipped_candidates", utils.Label{Value: "99", Source: "recall.i2i"})
	rctx.PutLabel("skipped_candidates", utils.Label{Value: "100", Source: "recall.i2i"})

	lbl, ok := rctx.GetLabel("skipped_candidates")
	if !ok || lbl.Value != "99|100" || lbl.Source != "recall.i2i" {
		t.Errorf("GetLabel() = %+v, %v", lbl, ok)
	}
}

func TestItem(t *testing.T) {
	it := NewAnimeItem(Anime{ID: 1535, Name: "Death Note", Genre: "Mystery"})
	it.PutLabel(LabelRecallSource, utils.Label{Value: SourceUserBased, Source: "recall"})
	if it.Name() != "Death Note" || it.Genre() != "Mystery" || it.RecallSource() != SourceUserBased {
		t.Errorf("item = %+v", it)
	}
	if NewItem(1).RecallSource() != "" {
		t.Error("RecallSource() of bare item should be empty")
	}
}
