package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

func TestUserRepo_CreateConflict(t *testing.T) {
	repo := NewUserRepo(NewStore())
	require.NoError(t, repo.Create(&entity.User{Username: "v", Email: "v@night.city", Password: "secret1"}))

	err := repo.Create(&entity.User{Username: "other", Email: "v@night.city", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = repo.Create(&entity.User{Username: "v", Email: "other@night.city", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := repo.GetByEmail("v@night.city")
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("secret1"), "Пароль хранится в виде хеша")
}

func TestUserRepo_ResetPasswordConditional(t *testing.T) {
	repo := NewUserRepo(NewStore())
	require.NoError(t, repo.Create(&entity.User{Username: "v", Email: "v@night.city", Password: "secret1"}))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetResetCode("v@night.city", "123456", now.Add(5*time.Minute)))

	ok, err := repo.ResetPassword("v@night.city", "000000", "hash", now, 5)
	require.NoError(t, err)
	assert.False(t, ok, "Неверный код не должен менять пароль")

	ok, _ = repo.ResetPassword("v@night.city", "123456", "hash", now.Add(6*time.Minute), 5)
	assert.False(t, ok, "Истекший код не должен менять пароль")

	ok, _ = repo.ResetPassword("v@night.city", "123456", "hash", now, 5)
	assert.True(t, ok)

	user, _ := repo.GetByEmail("v@night.city")
	assert.Equal(t, "hash", user.Password)
	assert.Nil(t, user.ResetCode, "Код сброса очищается после смены пароля")
}

func TestVerificationCodeRepo_UpsertReplaces(t *testing.T) {
	repo := NewVerificationCodeRepo(NewStore())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(&entity.VerificationCode{Email: "a@b.com", Code: "111111", ExpiresAt: now.Add(time.Minute)}))
	ok, _ := repo.IncrementAttempts("a@b.com", "111111", 5)
	require.True(t, ok)

	require.NoError(t, repo.Upsert(&entity.VerificationCode{Email: "a@b.com", Code: "222222", ExpiresAt: now.Add(time.Minute)}))

	record, err := repo.GetByEmail("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", record.Code)
	assert.Equal(t, 0, record.Attempts, "Новая запись начинает с нуля попыток")

	ok, _ = repo.IncrementAttempts("a@b.com", "111111", 5)
	assert.False(t, ok, "Попытка для замененного кода не засчитывается новой записи")
}

func TestVerificationCodeRepo_MarkUsedOnce(t *testing.T) {
	repo := NewVerificationCodeRepo(NewStore())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(&entity.VerificationCode{Email: "a@b.com", Code: "123456", ExpiresAt: now.Add(time.Minute)}))

	first, _ := repo.MarkUsed("a@b.com", "123456", now, 5)
	second, _ := repo.MarkUsed("a@b.com", "123456", now, 5)

	assert.True(t, first)
	assert.False(t, second, "Код нельзя использовать дважды")
}

func TestSceneRepo_CascadeAndOwnership(t *testing.T) {
	store := NewStore()
	characters := NewCharacterRepo(store)
	scenes := NewSceneRepo(store)

	npc := &entity.Character{UserID: 1, Name: "Jackie"}
	require.NoError(t, characters.Create(npc))
	scene := &entity.Scene{UserID: 1, Title: "Konpeki Plaza", NPCs: []entity.SceneNPC{{CharacterID: npc.ID}}}
	require.NoError(t, scenes.Create(scene))

	loaded, err := scenes.GetByID(1, scene.ID)
	require.NoError(t, err)
	require.Len(t, loaded.NPCs, 1)
	require.NotNil(t, loaded.NPCs[0].Character)
	assert.Equal(t, "Jackie", loaded.NPCs[0].Character.Name)

	_, err = scenes.GetByID(2, scene.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "Чужая сцена не видна")

	require.NoError(t, characters.Delete(1, npc.ID))
	loaded, _ = scenes.GetByID(1, scene.ID)
	assert.Empty(t, loaded.NPCs, "Удаление персонажа убирает его из сцен")
}
