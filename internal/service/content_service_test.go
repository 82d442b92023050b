package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/consts"
	"Postflow/internal/pkg/llm"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalOrder(t *testing.T) {
	platforms := []*model.Platform{
		{Name: "instagram"},
		{Name: "internal-wiki"}, // 未列入固定次序
		{Name: "twitter"},
		{Name: "blog"},
		{Name: "linkedin"},
	}
	CanonicalOrder(platforms)

	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"blog", "linkedin", "twitter", "instagram", "internal-wiki"}, names)
}

type contentFixture struct {
	svc          ContentService
	briefRepo    *fakeBriefRepo
	draftRepo    *fakeDraftRepo
	platformRepo *fakePlatformRepo
	postRepo     *fakePostRepo
	gen          *fakeGenerator
	notifier     *recordingNotifier
}

func newContentFixture(t *testing.T, gen *fakeGenerator, settings map[string]string) *contentFixture {
	t.Helper()
	f := &contentFixture{
		briefRepo:    newFakeBriefRepo(),
		draftRepo:    newFakeDraftRepo(),
		platformRepo: newFakePlatformRepo(),
		postRepo:     newFakePostRepo(),
		gen:          gen,
		notifier:     &recordingNotifier{},
	}
	f.svc = NewContentService(f.briefRepo, f.draftRepo, f.platformRepo, f.postRepo, gen, newFakeSettingSvc(settings), f.notifier)
	return f
}

func (f *contentFixture) addPlatform(t *testing.T, name string, active bool) *model.Platform {
	t.Helper()
	p := &model.Platform{Name: name, DisplayName: name, IsActive: active, PromptTemplate: "为 " + name + " 撰写：{{brief}}"}
	require.NoError(t, f.platformRepo.CreatePlatform(context.Background(), p))
	return p
}

func TestGeneratePostsFanOutPartialFailure(t *testing.T) {
	gen := &fakeGenerator{fn: func(req *llm.Request) (string, error) {
		if len(req.PlatformTemplate) > 0 && req.PlatformTemplate == "为 twitter 撰写：{{brief}}" {
			return "", errBoom
		}
		return "平台稿件", nil
	}}
	f := newContentFixture(t, gen, nil)

	f.addPlatform(t, "twitter", true)
	f.addPlatform(t, "blog", true)
	f.addPlatform(t, "facebook", false) // 停用平台不参与扇出

	brief := &model.Brief{Title: "发布会", Content: "纪要全文"}
	require.NoError(t, f.briefRepo.CreateBrief(context.Background(), brief, nil))

	results, err := f.svc.GeneratePosts(context.Background(), brief.ID, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// 固定次序：blog 在 twitter 之前
	assert.Equal(t, "blog", results[0].PlatformName)
	assert.NotZero(t, results[0].PostID)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, "twitter", results[1].PlatformName)
	assert.Zero(t, results[1].PostID)
	assert.Equal(t, ErrGenerationFailed.Error(), results[1].Error)

	// 失败平台不产生帖子
	posts, err := f.postRepo.ListByBrief(context.Background(), brief.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, consts.PostStatusDraft, posts[0].Status)
	assert.Equal(t, "平台稿件", posts[0].Content)

	assert.Equal(t, 1, f.notifier.count())
}

func TestGeneratePostsHonorsSelectedPlatforms(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{}, nil)

	blog := f.addPlatform(t, "blog", true)
	f.addPlatform(t, "twitter", true)

	selected := fmt.Sprintf("[%d]", blog.ID)
	brief := &model.Brief{Title: "发布会", Content: "纪要", SelectedPlatforms: &selected}
	require.NoError(t, f.briefRepo.CreateBrief(context.Background(), brief, nil))

	results, err := f.svc.GeneratePosts(context.Background(), brief.ID, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "blog", results[0].PlatformName)
}

func TestGeneratePostsFromMasterDraft(t *testing.T) {
	gen := &fakeGenerator{}
	settings := map[string]string{consts.SettingMasterPrompt: "主模板：{{brief}}"}
	f := newContentFixture(t, gen, settings)
	f.addPlatform(t, "blog", true)

	link := "https://example.com/launch"
	brief := &model.Brief{Title: "发布会", Content: "素材原文", LinkURL: &link}
	require.NoError(t, f.briefRepo.CreateBrief(context.Background(), brief, nil))

	draft := &model.MasterDraft{BriefID: brief.ID, Version: 1, Content: "批准的主草稿", Status: consts.DraftStatusApproved}
	require.NoError(t, f.draftRepo.CreateDraft(context.Background(), draft))

	results, err := f.svc.GeneratePosts(context.Background(), brief.ID, &draft.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotZero(t, results[0].PostID)

	// 底稿是主草稿原文加链接，不再套主提示词模板
	require.NotEmpty(t, gen.calls)
	assert.Equal(t, "批准的主草稿\n\nLink: https://example.com/launch", gen.calls[0].SourceText)
	assert.Empty(t, gen.calls[0].MasterPrompt)

	post, err := f.postRepo.GetPost(context.Background(), results[0].PostID)
	require.NoError(t, err)
	require.NotNil(t, post.MasterDraftID)
	assert.Equal(t, draft.ID, *post.MasterDraftID)
}

func TestGeneratePostsAppendsBriefLink(t *testing.T) {
	gen := &fakeGenerator{}
	settings := map[string]string{consts.SettingMasterPrompt: "主模板：{{brief}}"}
	f := newContentFixture(t, gen, settings)
	f.addPlatform(t, "blog", true)

	link := "https://example.com/launch"
	brief := &model.Brief{Title: "发布会", Content: "素材原文", LinkURL: &link}
	require.NoError(t, f.briefRepo.CreateBrief(context.Background(), brief, nil))

	_, err := f.svc.GeneratePosts(context.Background(), brief.ID, nil)
	require.NoError(t, err)

	// 素材路径：链接附在正文尾部，主提示词照常下发
	require.NotEmpty(t, gen.calls)
	assert.Equal(t, "素材原文\n\nLink: https://example.com/launch", gen.calls[0].SourceText)
	assert.Equal(t, "主模板：{{brief}}", gen.calls[0].MasterPrompt)
}

func TestGeneratePostsRejectsUnapprovedDraft(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{}, nil)
	f.addPlatform(t, "blog", true)

	brief := &model.Brief{Title: "发布会", Content: "素材"}
	require.NoError(t, f.briefRepo.CreateBrief(context.Background(), brief, nil))

	draft := &model.MasterDraft{BriefID: brief.ID, Version: 1, Content: "草稿", Status: consts.DraftStatusDraft}
	require.NoError(t, f.draftRepo.CreateDraft(context.Background(), draft))

	_, err := f.svc.GeneratePosts(context.Background(), brief.ID, &draft.ID)
	assert.ErrorIs(t, err, ErrDraftNotApproved)
}

func TestGeneratePostsBriefNotFound(t *testing.T) {
	f := newContentFixture(t, &fakeGenerator{}, nil)
	_, err := f.svc.GeneratePosts(context.Background(), 404, nil)
	assert.ErrorIs(t, err, ErrBriefNotFound)
}
