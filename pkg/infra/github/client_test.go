package github_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relcopy/pkg/domain/interfaces"
	"github.com/m-mizutani/relcopy/pkg/domain/model"
	"github.com/m-mizutani/relcopy/pkg/domain/types"
	githubinfra "github.com/m-mizutani/relcopy/pkg/infra/github"
)

var (
	srcRepo = model.Repository{Owner: "acme", Name: "widgets"}
	dstRepo = model.Repository{Owner: "acme", Name: "widgets-mirror"}
)

func newTestClient(t *testing.T, mux *http.ServeMux) interfaces.GitHubClient {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := githubinfra.NewClient("test-token",
		githubinfra.WithAPIURL(server.URL),
		githubinfra.WithDownloadClient(server.Client()),
	)
	gt.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	gt.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient_EmptyToken(t *testing.T) {
	client, err := githubinfra.NewClient("")
	gt.Error(t, err)
	gt.Value(t, client).Nil()
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}

func TestNewClient_InvalidAPIURL(t *testing.T) {
	_, err := githubinfra.NewClient("test-token", githubinfra.WithAPIURL("not-a-url"))
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}

func TestNewClient_EnterpriseEndpoints(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 100, "name": "notes.txt"})
	}))
	t.Cleanup(server.Close)

	testCases := []struct {
		name       string
		opts       []githubinfra.Option
		uploadPath string
	}{
		{
			name:       "host only",
			opts:       []githubinfra.Option{githubinfra.WithAPIURL(server.URL)},
			uploadPath: "/api/uploads/repos/acme/widgets-mirror/releases/42/assets",
		},
		{
			name:       "API endpoint only",
			opts:       []githubinfra.Option{githubinfra.WithAPIURL(server.URL + "/api/v3")},
			uploadPath: "/api/uploads/repos/acme/widgets-mirror/releases/42/assets",
		},
		{
			name: "explicit upload endpoint",
			opts: []githubinfra.Option{
				githubinfra.WithAPIURL(server.URL + "/api/v3/"),
				githubinfra.WithUploadURL(server.URL + "/ghe/api/uploads/"),
			},
			uploadPath: "/ghe/api/uploads/repos/acme/widgets-mirror/releases/42/assets",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mu.Lock()
			paths = nil
			mu.Unlock()

			client, err := githubinfra.NewClient("test-token", tc.opts...)
			gt.NoError(t, err)

			path := filepath.Join(t.TempDir(), "notes.txt")
			gt.NoError(t, os.WriteFile(path, []byte("notes"), 0600))
			file, err := os.Open(path)
			gt.NoError(t, err)
			defer file.Close()

			gt.NoError(t, client.UploadReleaseAsset(context.Background(), dstRepo, 42, &model.Asset{Name: "notes.txt"}, file))

			mu.Lock()
			defer mu.Unlock()
			gt.Value(t, paths).Equal([]string{tc.uploadPath})
		})
	}
}

func TestClient_GetReleaseByTag(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/releases/tags/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer test-token")
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":               1,
			"tag_name":         "v1.0.0",
			"target_commitish": "main",
			"name":             "Widgets 1.0",
			"body":             "first release",
			"prerelease":       true,
			"assets": []map[string]any{
				{"id": 11, "url": "https://api.github.com/repos/acme/widgets/releases/assets/11", "name": "widget.bin", "content_type": "application/x-binary", "size": 4},
				{"id": 12, "url": "https://api.github.com/repos/acme/widgets/releases/assets/12", "name": "readme.txt", "label": "Readme", "size": 5},
			},
		})
	})
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/releases/tags/v2.0.0", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":               2,
			"tag_name":         "v2.0.0",
			"target_commitish": "main",
			"name":             nil,
			"body":             "",
		})
	})
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/releases/tags/v9.9.9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"message": "Not Found"})
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("release with assets", func(t *testing.T) {
		release, err := client.GetReleaseByTag(ctx, srcRepo, "v1.0.0")
		gt.NoError(t, err)
		gt.Value(t, release.TagName).Equal("v1.0.0")
		gt.Value(t, release.TargetCommitish).Equal("main")
		gt.Value(t, release.GetName()).Equal("Widgets 1.0")
		gt.Value(t, release.GetBody()).Equal("first release")
		gt.True(t, release.Prerelease)
		gt.Number(t, len(release.Assets)).Equal(2)

		gt.Value(t, release.Assets[0].ID).Equal(int64(11))
		gt.Value(t, release.Assets[0].Name).Equal("widget.bin")
		gt.Value(t, release.Assets[0].ContentType).Equal("application/x-binary")
		gt.Value(t, release.Assets[0].Size).Equal(int64(4))
		gt.Value(t, release.Assets[1].Label).Equal("Readme")
	})

	t.Run("absent name and empty body become nil", func(t *testing.T) {
		release, err := client.GetReleaseByTag(ctx, srcRepo, "v2.0.0")
		gt.NoError(t, err)
		gt.Value(t, release.Name).Nil()
		gt.Value(t, release.Body).Nil()
		gt.Number(t, len(release.Assets)).Equal(0)
	})

	t.Run("missing release is tagged not found", func(t *testing.T) {
		release, err := client.GetReleaseByTag(ctx, srcRepo, "v9.9.9")
		gt.Error(t, err)
		gt.Value(t, release).Nil()
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})
}

func TestClient_GetReleaseByTag_Unauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/releases/tags/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"message": "Bad credentials"})
	})

	client := newTestClient(t, mux)
	_, err := client.GetReleaseByTag(context.Background(), srcRepo, "v1.0.0")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagUnauthorized))
}

func TestClient_CreateRelease(t *testing.T) {
	var received map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v3/repos/acme/widgets-mirror/releases", func(w http.ResponseWriter, r *http.Request) {
		received = map[string]any{}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"id":       42,
			"tag_name": received["tag_name"],
			"html_url": "https://github.com/acme/widgets-mirror/releases/tag/v1.0.0",
		})
	})

	client := newTestClient(t, mux)

	t.Run("metadata is sent as is", func(t *testing.T) {
		name := "Widgets 1.0"
		body := "first release"
		created, err := client.CreateRelease(context.Background(), dstRepo, &model.Release{
			TagName:         "v1.0.0",
			TargetCommitish: "main",
			Name:            &name,
			Body:            &body,
		})
		gt.NoError(t, err)
		gt.Value(t, created.ID).Equal(int64(42))
		gt.Value(t, created.HTMLURL).Equal("https://github.com/acme/widgets-mirror/releases/tag/v1.0.0")

		gt.Value(t, received["tag_name"]).Equal("v1.0.0")
		gt.Value(t, received["target_commitish"]).Equal("main")
		gt.Value(t, received["name"]).Equal("Widgets 1.0")
		gt.Value(t, received["body"]).Equal("first release")
	})

	t.Run("absent name and body are omitted", func(t *testing.T) {
		_, err := client.CreateRelease(context.Background(), dstRepo, &model.Release{
			TagName:         "v1.0.0",
			TargetCommitish: "main",
		})
		gt.NoError(t, err)

		_, hasName := received["name"]
		_, hasBody := received["body"]
		gt.False(t, hasName)
		gt.False(t, hasBody)
	})
}

func TestClient_CreateRelease_Conflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v3/repos/acme/widgets-mirror/releases", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{
			"message": "Validation Failed",
			"errors": []map[string]any{
				{"resource": "Release", "code": "already_exists", "field": "tag_name"},
			},
		})
	})

	client := newTestClient(t, mux)
	created, err := client.CreateRelease(context.Background(), dstRepo, &model.Release{TagName: "v1.0.0"})
	gt.Error(t, err)
	gt.Value(t, created).Nil()
	gt.True(t, goerr.HasTag(err, types.ErrTagConflict))
}

func TestClient_DownloadReleaseAsset(t *testing.T) {
	content := []byte{0x00, 0xff, 0xfe, 0x80, 'w'}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/releases/assets/11", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Accept")).Equal("application/octet-stream")
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer test-token")
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(content)
	})
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/releases/assets/12", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/storage/readme.txt?signature=abc", http.StatusFound)
	})
	mux.HandleFunc("GET /storage/readme.txt", func(w http.ResponseWriter, r *http.Request) {
		// Pre-signed storage rejects a second credential
		gt.Value(t, r.Header.Get("Authorization")).Equal("")
		_, _ = w.Write([]byte("hello"))
	})
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/releases/assets/13", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"message": "Not Found"})
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("direct content", func(t *testing.T) {
		rc, err := client.DownloadReleaseAsset(ctx, srcRepo, &model.Asset{ID: 11, Name: "widget.bin"})
		gt.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		gt.NoError(t, err)
		gt.Value(t, data).Equal(content)
	})

	t.Run("redirected content", func(t *testing.T) {
		rc, err := client.DownloadReleaseAsset(ctx, srcRepo, &model.Asset{ID: 12, Name: "readme.txt"})
		gt.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		gt.NoError(t, err)
		gt.Value(t, string(data)).Equal("hello")
	})

	t.Run("missing asset", func(t *testing.T) {
		rc, err := client.DownloadReleaseAsset(ctx, srcRepo, &model.Asset{ID: 13, Name: "gone.bin"})
		gt.Error(t, err)
		gt.Value(t, rc).Nil()
		gt.True(t, goerr.HasTag(err, types.ErrTagTransfer))
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})
}

func TestClient_UploadReleaseAsset(t *testing.T) {
	content := []byte{0x00, 0xff, 0xfe, 0x80, 'w'}

	var (
		gotName        string
		gotLabel       string
		gotContentType string
		gotBody        []byte
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/uploads/repos/acme/widgets-mirror/releases/42/assets", func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		gotLabel = r.URL.Query().Get("label")
		gotContentType = r.Header.Get("Content-Type")

		var err error
		gotBody, err = io.ReadAll(r.Body)
		gt.NoError(t, err)

		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 100, "name": gotName})
	})

	client := newTestClient(t, mux)

	path := filepath.Join(t.TempDir(), "widget.bin")
	gt.NoError(t, os.WriteFile(path, content, 0600))
	file, err := os.Open(path)
	gt.NoError(t, err)
	defer file.Close()

	asset := &model.Asset{Name: "widget.bin", Label: "Widget", ContentType: "application/x-binary"}
	gt.NoError(t, client.UploadReleaseAsset(context.Background(), dstRepo, 42, asset, file))

	gt.Value(t, gotName).Equal("widget.bin")
	gt.Value(t, gotLabel).Equal("Widget")
	gt.Value(t, gotContentType).Equal("application/x-binary")
	gt.Value(t, gotBody).Equal(content)
}

func TestClient_UploadReleaseAsset_Failure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/uploads/repos/acme/widgets-mirror/releases/42/assets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]any{"message": "Resource not accessible by integration"})
	})

	client := newTestClient(t, mux)

	path := filepath.Join(t.TempDir(), "notes.txt")
	gt.NoError(t, os.WriteFile(path, []byte("notes"), 0600))
	file, err := os.Open(path)
	gt.NoError(t, err)
	defer file.Close()

	err = client.UploadReleaseAsset(context.Background(), dstRepo, 42, &model.Asset{Name: "notes.txt"}, file)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagTransfer))
	gt.True(t, goerr.HasTag(err, types.ErrTagUnauthorized))
}

func TestClient_WithRealAPI(t *testing.T) {
	token := os.Getenv("TEST_GITHUB_TOKEN")
	repo := os.Getenv("TEST_GITHUB_REPO")
	tag := os.Getenv("TEST_GITHUB_TAG")

	if token == "" || repo == "" || tag == "" {
		t.Skip("Test GitHub credentials not provided via environment variables")
	}

	target, err := model.ParseRepository(repo)
	gt.NoError(t, err)

	client, err := githubinfra.NewClient(token)
	gt.NoError(t, err)

	release, err := client.GetReleaseByTag(context.Background(), target, tag)
	gt.NoError(t, err)
	gt.Value(t, release.TagName).Equal(tag)
}
