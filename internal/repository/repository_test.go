package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/repository"
	"elite_blog/internal/storage"
	"elite_blog/internal/storage/postgresql"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testCtx = context.Background()

	containerOnce sync.Once
	sharedPool    *pgxpool.Pool
	sharedErr     error
	pgContainer   testcontainers.Container
)

func TestMain(m *testing.M) {
	code := m.Run()

	if sharedPool != nil {
		sharedPool.Close()
	}
	if pgContainer != nil {
		_ = pgContainer.Terminate(testCtx)
	}

	os.Exit(code)
}

// setupTestDB returns a pool on a migrated, emptied database. One postgres
// container serves the whole package.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	containerOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}

		pgContainer, sharedErr = testcontainers.GenericContainer(testCtx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if sharedErr != nil {
			return
		}

		host, err := pgContainer.Host(testCtx)
		if err != nil {
			sharedErr = err
			return
		}
		port, err := pgContainer.MappedPort(testCtx, "5432")
		if err != nil {
			sharedErr = err
			return
		}

		connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

		sharedPool, sharedErr = pgxpool.Connect(testCtx, connStr)
		if sharedErr != nil {
			return
		}

		sharedErr = postgresql.Migrate(testCtx, sharedPool)
	})
	require.NoError(t, sharedErr)

	_, err := sharedPool.Exec(testCtx,
		"TRUNCATE posts, gallery_images, pending_uploads, categories, admins RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return sharedPool
}

func stage(t *testing.T, repo *repository.UploadRepo, collection models.Collection, n int) []models.StoredFile {
	t.Helper()

	files := make([]models.StoredFile, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("%s%d-%s.jpg", collection.Prefix(), time.Now().UnixMilli(), gofakeit.LetterN(10))
		f := models.StoredFile{Key: key, URL: "https://cdn.test/" + key}
		require.NoError(t, repo.SavePending(testCtx, models.PendingUpload{
			Key:         f.Key,
			Collection:  collection,
			URL:         f.URL,
			Size:        int64(gofakeit.Number(100, 5000)),
			ContentType: "image/jpeg",
		}))
		files = append(files, f)
	}

	return files
}

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCategoryRepo(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewCategoryRepository(pool)

	for _, name := range []string{"Tech", "Events", "Art"} {
		_, err := repo.SaveCategory(testCtx, name)
		require.NoError(t, err)
	}

	t.Run("ordered by name", func(t *testing.T) {
		list, err := repo.ListCategories(testCtx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"Art", "Events", "Tech"}, []string{list[0].Name, list[1].Name, list[2].Name})
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.SaveCategory(testCtx, "Tech")
		assert.ErrorIs(t, err, storage.ErrCategoryExists)
	})

	t.Run("delete", func(t *testing.T) {
		list, err := repo.ListCategories(testCtx)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteCategory(testCtx, list[0].ID))
		assert.ErrorIs(t, repo.DeleteCategory(testCtx, list[0].ID), storage.ErrCategoryNotFound)

		list, err = repo.ListCategories(testCtx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestPostRepo_SaveAndList(t *testing.T) {
	pool := setupTestDB(t)
	repos := repository.NewRepository(pool)

	tech, err := repos.Category.SaveCategory(testCtx, "Tech")
	require.NoError(t, err)

	newPost := func(title, date string, categoryID *int64, files []models.StoredFile) models.Post {
		p := models.Post{Title: title, Content: gofakeit.Paragraph(1, 3, 10, " "), Date: day(date), CategoryID: categoryID}
		p.SetImages(files)
		return p
	}

	first, err := repos.Post.SavePost(testCtx, newPost("old", "2024-01-10", &tech.ID, stage(t, repos.Upload, models.CollectionBlog, 2)))
	require.NoError(t, err)
	_, err = repos.Post.SavePost(testCtx, newPost("new", "2024-03-01", nil, stage(t, repos.Upload, models.CollectionBlog, 1)))
	require.NoError(t, err)

	t.Run("saved post carries category and images", func(t *testing.T) {
		require.NotNil(t, first.Category)
		assert.Equal(t, "Tech", first.Category.Name)
		assert.NotEmpty(t, first.ImageKey)
		assert.Len(t, first.AdditionalImageKeys, 1)
		assert.Len(t, first.AdditionalImages, 1)
		assert.Equal(t, day("2024-01-10"), first.Date)
	})

	t.Run("pending uploads are claimed", func(t *testing.T) {
		pending, err := repos.Upload.GetPending(testCtx, first.ImageKeys())
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("reusing a claimed key fails", func(t *testing.T) {
		p := newPost("dup", "2024-02-01", nil, []models.StoredFile{{Key: first.ImageKey, URL: first.ImageURL}})
		_, err := repos.Post.SavePost(testCtx, p)
		assert.ErrorIs(t, err, storage.ErrUploadNotFound)

		all, err := repos.Post.GetPosts(testCtx, models.PostFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2, "failed insert must roll back")
	})

	t.Run("unknown category", func(t *testing.T) {
		missing := int64(999)
		_, err := repos.Post.SavePost(testCtx, newPost("x", "2024-02-01", &missing, stage(t, repos.Upload, models.CollectionBlog, 1)))
		assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
	})

	t.Run("date descending", func(t *testing.T) {
		all, err := repos.Post.GetPosts(testCtx, models.PostFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "new", all[0].Title)
		assert.Equal(t, "old", all[1].Title)
	})

	t.Run("filter by category id", func(t *testing.T) {
		filtered, err := repos.Post.GetPosts(testCtx, models.PostFilter{CategoryID: tech.ID})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, "old", filtered[0].Title)
	})

	t.Run("date window ascending", func(t *testing.T) {
		from := day("2024-02-01")
		upcoming, err := repos.Post.GetPosts(testCtx, models.PostFilter{DateFrom: &from, OrderBy: models.PostOrderDateAsc})
		require.NoError(t, err)
		require.Len(t, upcoming, 1)
		assert.Equal(t, "new", upcoming[0].Title)

		past, err := repos.Post.GetPosts(testCtx, models.PostFilter{DateBefore: &from})
		require.NoError(t, err)
		require.Len(t, past, 1)
		assert.Equal(t, "old", past[0].Title)
	})

	t.Run("deleting the category keeps the post", func(t *testing.T) {
		require.NoError(t, repos.Category.DeleteCategory(testCtx, tech.ID))

		p, err := repos.Post.GetPostByID(testCtx, first.ID)
		require.NoError(t, err)
		assert.Nil(t, p.CategoryID)
		assert.Nil(t, p.Category)
	})
}

func TestPostRepo_Update(t *testing.T) {
	pool := setupTestDB(t)
	repos := repository.NewRepository(pool)

	files := stage(t, repos.Upload, models.CollectionBlog, 3)
	p := models.Post{Title: "title", Content: "body", Date: day("2024-05-05")}
	p.SetImages(files)

	saved, err := repos.Post.SavePost(testCtx, p)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	t.Run("partial update preserves id and created_at", func(t *testing.T) {
		title := "renamed"
		updated, removed, err := repos.Post.UpdatePost(testCtx, saved.ID, models.PostUpdate{Title: &title})
		require.NoError(t, err)

		assert.Equal(t, saved.ID, updated.ID)
		assert.Equal(t, "renamed", updated.Title)
		assert.Equal(t, "body", updated.Content)
		assert.True(t, saved.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(saved.UpdatedAt))
		assert.Empty(t, removed)
		assert.Equal(t, saved.ImageKeys(), updated.ImageKeys())
	})

	t.Run("replacing images reports dropped keys", func(t *testing.T) {
		fresh := stage(t, repos.Upload, models.CollectionBlog, 1)
		next := []models.StoredFile{files[1], fresh[0]}

		updated, removed, err := repos.Post.UpdatePost(testCtx, saved.ID, models.PostUpdate{Images: next})
		require.NoError(t, err)

		assert.Equal(t, files[1].Key, updated.ImageKey)
		assert.Equal(t, []string{fresh[0].Key}, updated.AdditionalImageKeys)
		assert.ElementsMatch(t, []string{files[0].Key, files[2].Key}, removed)
	})

	t.Run("unstaged image rolls back", func(t *testing.T) {
		title := "never"
		_, _, err := repos.Post.UpdatePost(testCtx, saved.ID, models.PostUpdate{
			Title:  &title,
			Images: []models.StoredFile{{Key: "blog/unknown.jpg", URL: "u"}},
		})
		assert.ErrorIs(t, err, storage.ErrUploadNotFound)

		current, err := repos.Post.GetPostByID(testCtx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", current.Title)
	})

	t.Run("clear category", func(t *testing.T) {
		zero := int64(0)
		updated, _, err := repos.Post.UpdatePost(testCtx, saved.ID, models.PostUpdate{CategoryID: &zero})
		require.NoError(t, err)
		assert.Nil(t, updated.CategoryID)
	})

	t.Run("missing post", func(t *testing.T) {
		title := "x"
		_, _, err := repos.Post.UpdatePost(testCtx, 4242, models.PostUpdate{Title: &title})
		assert.ErrorIs(t, err, storage.ErrPostNotFound)
	})
}

func TestPostRepo_Delete(t *testing.T) {
	pool := setupTestDB(t)
	repos := repository.NewRepository(pool)

	files := stage(t, repos.Upload, models.CollectionBlog, 3)
	p := models.Post{Title: "t", Content: "c", Date: day("2024-01-01")}
	p.SetImages(files)

	saved, err := repos.Post.SavePost(testCtx, p)
	require.NoError(t, err)

	keys, err := repos.Post.DeletePost(testCtx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{files[0].Key, files[1].Key, files[2].Key}, keys)

	_, err = repos.Post.GetPostByID(testCtx, saved.ID)
	assert.ErrorIs(t, err, storage.ErrPostNotFound)

	_, err = repos.Post.DeletePost(testCtx, saved.ID)
	assert.ErrorIs(t, err, storage.ErrPostNotFound)
}

func TestGalleryRepo(t *testing.T) {
	pool := setupTestDB(t)
	repos := repository.NewRepository(pool)

	files := stage(t, repos.Upload, models.CollectionGallery, 3)
	images := make([]models.GalleryImage, 0, len(files))
	for _, f := range files {
		images = append(images, models.GalleryImage{
			Title:        "Night shoot",
			Photographer: gofakeit.Name(),
			ImageKey:     f.Key,
			ImageURL:     f.URL,
		})
	}

	saved, err := repos.Gallery.SaveImages(testCtx, images)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	for i, img := range saved {
		assert.NotZero(t, img.ID)
		assert.Equal(t, files[i].Key, img.ImageKey)
	}

	t.Run("blog uploads cannot be used in the gallery", func(t *testing.T) {
		blog := stage(t, repos.Upload, models.CollectionBlog, 1)
		_, err := repos.Gallery.SaveImages(testCtx, []models.GalleryImage{{Title: "x", Photographer: "y", ImageKey: blog[0].Key, ImageURL: blog[0].URL}})
		assert.ErrorIs(t, err, storage.ErrUploadNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		list, err := repos.Gallery.GetImages(testCtx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, saved[2].ID, list[0].ID)
	})

	t.Run("delete returns key", func(t *testing.T) {
		key, err := repos.Gallery.DeleteImage(testCtx, saved[0].ID)
		require.NoError(t, err)
		assert.Equal(t, files[0].Key, key)

		_, err = repos.Gallery.DeleteImage(testCtx, saved[0].ID)
		assert.ErrorIs(t, err, storage.ErrGalleryImageNotFound)
	})
}

func TestUploadRepo_ProtectedKeysAndStale(t *testing.T) {
	pool := setupTestDB(t)
	repos := repository.NewRepository(pool)

	used := stage(t, repos.Upload, models.CollectionBlog, 2)
	p := models.Post{Title: "t", Content: "c", Date: day("2024-01-01")}
	p.SetImages(used)
	_, err := repos.Post.SavePost(testCtx, p)
	require.NoError(t, err)

	pending := stage(t, repos.Upload, models.CollectionBlog, 1)
	gallery := stage(t, repos.Upload, models.CollectionGallery, 1)

	t.Run("referenced and fresh pending keys", func(t *testing.T) {
		keys, err := repos.Upload.ProtectedKeys(testCtx, models.CollectionBlog, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, keys, 3)
		assert.Contains(t, keys, used[0].Key)
		assert.Contains(t, keys, used[1].Key)
		assert.Contains(t, keys, pending[0].Key)
		assert.NotContains(t, keys, gallery[0].Key)
	})

	t.Run("old pending keys are not protected", func(t *testing.T) {
		keys, err := repos.Upload.ProtectedKeys(testCtx, models.CollectionBlog, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Len(t, keys, 2)
		assert.NotContains(t, keys, pending[0].Key)
	})

	t.Run("stale pending removed", func(t *testing.T) {
		n, err := repos.Upload.DeleteStalePending(testCtx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		left, err := repos.Upload.GetPending(testCtx, []string{pending[0].Key, gallery[0].Key})
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}

func TestAdminRepo(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewAdminRepository(pool)

	email := gofakeit.Email()
	id, err := repo.SaveAdmin(testCtx, email, []byte("hash"))
	require.NoError(t, err)

	_, err = repo.SaveAdmin(testCtx, email, []byte("hash"))
	assert.ErrorIs(t, err, storage.ErrUserExists)

	admin, err := repo.AdminByEmail(testCtx, email)
	require.NoError(t, err)
	assert.Equal(t, id, admin.ID)
	assert.Equal(t, []byte("hash"), admin.Password)

	require.NoError(t, repo.UpdatePassword(testCtx, id, []byte("new")))
	admin, err = repo.AdminByID(testCtx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), admin.Password)

	_, err = repo.AdminByEmail(testCtx, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
