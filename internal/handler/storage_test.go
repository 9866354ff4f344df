package handler_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/foldervault/foldervault/internal/app"
	"github.com/foldervault/foldervault/internal/config"
	"github.com/foldervault/foldervault/internal/db"
	"github.com/foldervault/foldervault/internal/model"
	"github.com/foldervault/foldervault/internal/repository"
	"github.com/foldervault/foldervault/internal/routes"
	"github.com/foldervault/foldervault/internal/service"
	"github.com/foldervault/foldervault/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server  *httptest.Server
	auth    *service.AuthService
	users   repository.UserRepository
	folders repository.FolderRepository
	files   repository.FileRepository
	storage storage.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	conn := filepath.Join(dir, "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	blobs, err := storage.NewLocalStorage(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	cfg := &config.Config{
		AppName:            "Foldervault",
		AppEnv:             "development",
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		CORSAllowedOrigins: []string{"*"},
	}

	users := repository.NewUserRepository(database)
	folders := repository.NewFolderRepository(database)
	files := repository.NewFileRepository(database)

	emailService := service.NewEmailService("", "noreply@example.com", cfg.AppName, true)
	authService := service.NewAuthService(users, cfg.JWTSecret, cfg.JWTExpiry)
	folderService := service.NewFolderService(folders, files, users, blobs, emailService)

	a := &app.App{
		Cfg:           cfg,
		DB:            database,
		AuthService:   authService,
		FolderService: folderService,
		EmailService:  emailService,
	}

	srv := httptest.NewServer(routes.SetupRoutes(a))
	t.Cleanup(srv.Close)

	return &testServer{
		server:  srv,
		auth:    authService,
		users:   users,
		folders: folders,
		files:   files,
		storage: blobs,
	}
}

func (ts *testServer) addUser(t *testing.T, email, password string, roles ...string) (*model.User, string) {
	t.Helper()

	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      email,
		Roles:     roles,
		CreatedAt: time.Now().UTC(),
	}
	if password != "" {
		hash, err := ts.auth.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = &hash
	}
	require.NoError(t, ts.users.Create(user))

	token, err := ts.auth.GenerateJWT(user)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) addFolderWithFile(t *testing.T, path string, owner *model.User, fileName, content string) *model.Folder {
	t.Helper()

	now := time.Now().UTC()
	folder := &model.Folder{
		ID: uuid.New().String(), Path: path, OwnerID: owner.ID,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, ts.folders.Create(folder))

	locator := "blobs/" + uuid.New().String()
	require.NoError(t, ts.storage.Save(locator, strings.NewReader(content)))
	require.NoError(t, ts.files.Create(&model.File{
		ID: uuid.New().String(), FolderID: folder.ID, Name: fileName,
		StoragePath: locator, Size: int64(len(content)), CreatedAt: now, UpdatedAt: now,
	}))

	return folder
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out["error"]
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "o@x.com", "correct horse battery staple", model.RoleUser)

	t.Run("Succeeds", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "o@x.com", "password": "correct horse battery staple",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.NotEmpty(t, out["token"])
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "o@x.com", "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("MalformedEmail", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "not-an-email", "password": "x",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestShareEndpoint(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.addUser(t, "o@x.com", "", model.RoleUser)
	ts.addUser(t, "g@x.com", "", model.RoleUser)
	ts.addFolderWithFile(t, "/docs", owner, "a.txt", "hi")

	t.Run("RequiresAuth", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/storage/share", "", map[string]any{
			"folderpath": "/docs", "emails": []string{"g@x.com"},
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("BlankPathIs400", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/storage/share", ownerToken, map[string]any{
			"folderpath": "", "emails": []string{"g@x.com"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "folder path must not be blank", decodeError(t, resp))
	})

	t.Run("UnknownGranteeIs404", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/storage/share", ownerToken, map[string]any{
			"folderpath": "/docs", "emails": []string{"ghost@x.com"},
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "user not found for email: ghost@x.com", decodeError(t, resp))
	})

	t.Run("ShareReturnsUpdatedFolder", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/storage/share", ownerToken, map[string]any{
			"folderpath": "/docs", "emails": []string{"g@x.com"},
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var folder model.Folder
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&folder))
		require.Len(t, folder.SharedWith, 1)
		assert.Equal(t, "g@x.com", folder.SharedWith[0].Email)
	})
}

func TestDownloadEndpoint(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.addUser(t, "o@x.com", "", model.RoleUser)
	_, granteeToken := ts.addUser(t, "g@x.com", "", model.RoleUser)
	_, strangerToken := ts.addUser(t, "stranger@x.com", "", model.RoleUser)
	ts.addFolderWithFile(t, "/docs", owner, "a.txt", "hi")

	resp := ts.do(t, http.MethodPost, "/api/v1/storage/share", ownerToken, map[string]any{
		"folderpath": "/docs", "emails": []string{"g@x.com"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	t.Run("GranteeDownloadsZip", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/api/v1/storage/download?folderpath=/docs", granteeToken, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename=folder.zip`, resp.Header.Get("Content-Disposition"))

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		require.Len(t, zr.File, 1)
		assert.Equal(t, "a.txt", zr.File[0].Name)

		rc, err := zr.File[0].Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, "hi", string(content))
	})

	t.Run("StrangerGets404", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/api/v1/storage/download?folderpath=/docs", strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "folder not found or not accessible", decodeError(t, resp))
	})

	t.Run("MissingQueryIs400", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/api/v1/storage/download", ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "folder path must not be blank", decodeError(t, resp))
	})
}

func TestFolderEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, userToken := ts.addUser(t, "o@x.com", "", model.RoleUser)
	_, adminToken := ts.addUser(t, "admin@x.com", "", model.RoleAdmin)

	t.Run("CreateAndGet", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/folders", userToken, map[string]string{"path": "/docs"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var folder model.Folder
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&folder))
		assert.Equal(t, "/docs", folder.Path)

		got := ts.do(t, http.MethodGet, "/api/v1/folders/"+folder.ID, userToken, nil)
		assert.Equal(t, http.StatusOK, got.StatusCode)
		got.Body.Close()
	})

	t.Run("ListIsAdminOnly", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/api/v1/folders", userToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()

		resp = ts.do(t, http.MethodGet, "/api/v1/folders", adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/folders", userToken, map[string]string{"path": "/temp"})
		var folder model.Folder
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&folder))
		resp.Body.Close()

		resp = ts.do(t, http.MethodPut, "/api/v1/folders/"+folder.ID, userToken, map[string]string{"path": "/renamed"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = ts.do(t, http.MethodDelete, "/api/v1/folders/"+folder.ID, userToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		resp = ts.do(t, http.MethodGet, "/api/v1/folders/"+folder.ID, userToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/status", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])
}
