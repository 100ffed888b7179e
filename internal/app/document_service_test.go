package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teambot/internal/model"
)

type documentFixture struct {
	svc    *DocumentService
	bots   *fakeBotStore
	docs   *fakeDocumentStore
	chunks *fakeChunkStore
	queue  *fakeIngestQueue
}

func newDocumentFixture(maxBytes int64) *documentFixture {
	f := &documentFixture{
		bots:   newFakeBotStore(),
		docs:   newFakeDocumentStore(),
		chunks: newFakeChunkStore(),
		queue:  &fakeIngestQueue{},
	}
	f.svc = NewDocumentService(f.bots, f.docs, f.chunks, f.queue, maxBytes, zap.NewNop())
	return f
}

func (f *documentFixture) seedBot(t *testing.T, owner, scope string) *model.Bot {
	t.Helper()
	bot := &model.Bot{
		Name:      "Docs Bot",
		Scope:     scope,
		Status:    model.BotStatusActive,
		CreatedBy: owner,
	}
	require.NoError(t, f.bots.Create(bot))
	return bot
}

func uploadInput(userID, botID string) UploadDocumentInput {
	return UploadDocumentInput{
		UserID:   userID,
		BotID:    botID,
		Filename: "notes.txt",
		MimeType: "text/plain",
		Payload:  []byte("Some document content."),
	}
}

func TestUploadQueuesPendingDocument(t *testing.T) {
	f := newDocumentFixture(0)
	bot := f.seedBot(t, "alice", model.ScopePersonal)

	doc, err := f.svc.Upload(context.Background(), uploadInput("alice", bot.ID))
	require.NoError(t, err)

	assert.Equal(t, model.DocumentStatusPending, doc.Status)
	assert.Equal(t, "notes.txt", doc.Name)
	assert.Empty(t, doc.Content)

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, doc.ID, f.queue.jobs[0].DocumentID)
	assert.Equal(t, []byte("Some document content."), f.queue.jobs[0].Payload)
	assert.Equal(t, 0, f.queue.jobs[0].Attempt)
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	f := newDocumentFixture(0)
	bot := f.seedBot(t, "alice", model.ScopePersonal)

	input := uploadInput("alice", bot.ID)
	input.Filename = "malware.exe"
	_, err := f.svc.Upload(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.queue.jobs)
}

func TestUploadEnforcesSizeLimit(t *testing.T) {
	f := newDocumentFixture(8)
	bot := f.seedBot(t, "alice", model.ScopePersonal)

	input := uploadInput("alice", bot.ID)
	input.Payload = []byte("more than eight bytes")
	_, err := f.svc.Upload(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUploadForbiddenForNonOwner(t *testing.T) {
	f := newDocumentFixture(0)
	personal := f.seedBot(t, "alice", model.ScopePersonal)
	org := f.seedBot(t, "alice", model.ScopeOrganization)

	_, err := f.svc.Upload(context.Background(), uploadInput("bob", personal.ID))
	assert.ErrorIs(t, err, ErrForbidden)

	// Organization bots accept uploads from any member.
	_, err = f.svc.Upload(context.Background(), uploadInput("bob", org.ID))
	assert.NoError(t, err)
}

func TestUploadMarksFailedWhenQueueUnavailable(t *testing.T) {
	f := newDocumentFixture(0)
	bot := f.seedBot(t, "alice", model.ScopePersonal)
	f.queue.err = errors.New("broker down")

	_, err := f.svc.Upload(context.Background(), uploadInput("alice", bot.ID))
	require.Error(t, err)

	docs, listErr := f.docs.ListByBotID(bot.ID)
	require.NoError(t, listErr)
	require.Len(t, docs, 1)
	assert.Equal(t, model.DocumentStatusFailed, docs[0].Status)
	assert.Contains(t, docs[0].Metadata["error"], "broker down")
}

func TestListDocumentsRedactsContent(t *testing.T) {
	f := newDocumentFixture(0)
	bot := f.seedBot(t, "alice", model.ScopePersonal)

	doc := &model.Document{
		BotID:   bot.ID,
		Name:    "guide",
		Status:  model.DocumentStatusCompleted,
		Content: "full extracted text",
	}
	require.NoError(t, f.docs.Create(doc))

	docs, err := f.svc.ListDocuments(bot.ID, "alice")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Content)
	assert.Equal(t, "guide", docs[0].Name)
}

func TestListDocumentsForbiddenOnForeignPersonalBot(t *testing.T) {
	f := newDocumentFixture(0)
	personal := f.seedBot(t, "alice", model.ScopePersonal)
	org := f.seedBot(t, "alice", model.ScopeOrganization)

	doc := &model.Document{BotID: personal.ID, Name: "secret notes"}
	require.NoError(t, f.docs.Create(doc))

	_, err := f.svc.ListDocuments(personal.ID, "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	docs, err := f.svc.ListDocuments(personal.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = f.svc.ListDocuments(org.ID, "mallory")
	assert.NoError(t, err)
}

func TestGetDocumentForbiddenOnForeignPersonalBot(t *testing.T) {
	f := newDocumentFixture(0)
	personal := f.seedBot(t, "alice", model.ScopePersonal)

	doc := &model.Document{BotID: personal.ID, Name: "secret notes"}
	require.NoError(t, f.docs.Create(doc))

	_, err := f.svc.GetDocument(doc.ID, "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.GetDocument(doc.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestGetDocumentForbiddenWhenBotMissing(t *testing.T) {
	f := newDocumentFixture(0)

	doc := &model.Document{BotID: "gone", Name: "orphan"}
	require.NoError(t, f.docs.Create(doc))

	_, err := f.svc.GetDocument(doc.ID, "alice")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteDocumentForbiddenWhenBotMissing(t *testing.T) {
	f := newDocumentFixture(0)

	doc := &model.Document{BotID: "gone", Name: "orphan"}
	require.NoError(t, f.docs.Create(doc))

	err := f.svc.DeleteDocument(doc.ID, "alice")
	assert.ErrorIs(t, err, ErrForbidden)

	stored, getErr := f.docs.GetByID(doc.ID)
	require.NoError(t, getErr)
	assert.NotNil(t, stored)
}

func TestDeleteDocumentOwnerOnly(t *testing.T) {
	f := newDocumentFixture(0)
	bot := f.seedBot(t, "alice", model.ScopePersonal)

	doc := &model.Document{BotID: bot.ID, Name: "guide"}
	require.NoError(t, f.docs.Create(doc))
	require.NoError(t, f.chunks.CreateBatch([]model.DocumentChunk{
		{DocumentID: doc.ID, Seq: 0, Content: "chunk"},
	}))

	err := f.svc.DeleteDocument(doc.ID, "bob")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.DeleteDocument(doc.ID, "alice"))

	stored, err := f.docs.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	rows, err := f.chunks.ListByDocumentID(doc.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
