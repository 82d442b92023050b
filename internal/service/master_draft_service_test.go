package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/llm"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftFixture(t *testing.T, settings map[string]string, gen *fakeGenerator) (MasterDraftService, *fakeBriefRepo, *fakeDraftRepo) {
	t.Helper()
	briefRepo := newFakeBriefRepo()
	draftRepo := newFakeDraftRepo()
	svc := NewMasterDraftService(briefRepo, draftRepo, gen, newFakeSettingSvc(settings))
	return svc, briefRepo, draftRepo
}

func TestMasterDraftGenerateRequiresPrompt(t *testing.T) {
	svc, briefRepo, _ := newDraftFixture(t, nil, &fakeGenerator{})
	brief := &model.Brief{Title: "发布会", Content: "产品发布会纪要"}
	require.NoError(t, briefRepo.CreateBrief(context.Background(), brief, nil))

	_, err := svc.Generate(context.Background(), brief.ID)
	assert.ErrorIs(t, err, ErrMasterPromptMissing)
}

func TestMasterDraftChainAppendsVersions(t *testing.T) {
	gen := &fakeGenerator{fn: func(req *llm.Request) (string, error) {
		if strings.Contains(req.PlatformTemplate, "修改意见") {
			return "修正后的主草稿", nil
		}
		return "初版主草稿", nil
	}}
	settings := map[string]string{consts.SettingMasterPrompt: "基于以下素材撰写：{{brief}}"}
	svc, briefRepo, _ := newDraftFixture(t, settings, gen)

	brief := &model.Brief{Title: "发布会", Content: "产品发布会纪要"}
	require.NoError(t, briefRepo.CreateBrief(context.Background(), brief, nil))

	v1, err := svc.Generate(context.Background(), brief.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, "初版主草稿", v1.Content)
	assert.Equal(t, consts.DraftStatusDraft, v1.Status)
	assert.Nil(t, v1.CorrectionPrompt)

	v2, err := svc.Correct(context.Background(), v1.ID, "语气更正式一些")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, "修正后的主草稿", v2.Content)
	require.NotNil(t, v2.CorrectionPrompt)
	assert.Equal(t, "语气更正式一些", *v2.CorrectionPrompt)

	// 修正调用应携带上一版内容与修改意见
	last := gen.calls[len(gen.calls)-1]
	assert.Equal(t, v1.Content, last.SourceText)
	assert.Contains(t, last.PlatformTemplate, "语气更正式一些")

	versions, err := svc.ListVersions(context.Background(), brief.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, 1, versions[1].Version)

	latest, err := svc.Latest(context.Background(), brief.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)
}

func TestMasterDraftGenerateAppendsLink(t *testing.T) {
	gen := &fakeGenerator{}
	settings := map[string]string{consts.SettingMasterPrompt: "基于以下素材撰写：{{brief}}"}
	svc, briefRepo, _ := newDraftFixture(t, settings, gen)

	link := "https://example.com/launch"
	brief := &model.Brief{Title: "发布会", Content: "产品发布会纪要", LinkURL: &link}
	require.NoError(t, briefRepo.CreateBrief(context.Background(), brief, nil))

	_, err := svc.Generate(context.Background(), brief.ID)
	require.NoError(t, err)

	require.NotEmpty(t, gen.calls)
	assert.Equal(t, "产品发布会纪要\n\nLink: https://example.com/launch", gen.calls[0].SourceText)
}

func TestMasterDraftApproveIsIdempotent(t *testing.T) {
	settings := map[string]string{consts.SettingMasterPrompt: "{{brief}}"}
	svc, briefRepo, _ := newDraftFixture(t, settings, &fakeGenerator{})

	brief := &model.Brief{Title: "发布会", Content: "纪要"}
	require.NoError(t, briefRepo.CreateBrief(context.Background(), brief, nil))

	draft, err := svc.Generate(context.Background(), brief.ID)
	require.NoError(t, err)

	first, err := svc.Approve(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, consts.DraftStatusApproved, first.Status)

	second, err := svc.Approve(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, consts.DraftStatusApproved, second.Status)
}

func TestMasterDraftCorrectApprovedRejected(t *testing.T) {
	settings := map[string]string{consts.SettingMasterPrompt: "{{brief}}"}
	svc, briefRepo, _ := newDraftFixture(t, settings, &fakeGenerator{})

	brief := &model.Brief{Title: "发布会", Content: "纪要"}
	require.NoError(t, briefRepo.CreateBrief(context.Background(), brief, nil))

	draft, err := svc.Generate(context.Background(), brief.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), draft.ID)
	require.NoError(t, err)

	_, err = svc.Correct(context.Background(), draft.ID, "再改一版")
	assert.ErrorIs(t, err, ErrDraftApproved)
}
