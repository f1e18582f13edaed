package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// BaseURLPlaceholder marks absolute URLs in fixture documents. Servers
// replace it with their own address when serving.
const BaseURLPlaceholder = "{{base}}"

// ManifestPath is where the fixture version manifest is served.
const ManifestPath = "/mc/version_manifest.json"

// MetaFixtures returns a small metadata service and version manifest for
// game version 1.2.5, keyed by request path.
func MetaFixtures() map[string]string {
	return map[string]string{
		ManifestPath: `{
  "latest": {"release": "1.2.5", "snapshot": "12w08a"},
  "versions": [
    {"id": "12w08a", "type": "snapshot", "url": "{{base}}/mc/12w08a.json", "details": "{{base}}/mc/12w08a/details.json", "releaseTime": "2012-02-23T00:00:00+00:00"},
    {"id": "1.2.5", "type": "release", "url": "{{base}}/mc/1.2.5.json", "details": "{{base}}/mc/1.2.5/details.json", "releaseTime": "2012-03-29T22:00:00+00:00"},
    {"id": "b1.7.3", "type": "old_beta", "url": "{{base}}/mc/b1.7.3.json", "details": "{{base}}/mc/b1.7.3/details.json", "releaseTime": "2011-07-07T22:00:00+00:00"}
  ]
}`,
		"/mc/1.2.5/details.json": `{
  "manifests": [{"url": "{{base}}/mc/1.2.5/client.json"}, {"url": "{{base}}/mc/1.2.5/extra.json"}],
  "sharedMappings": false,
  "libraries": ["org.lwjgl.lwjgl:lwjgl:2.9.0"],
  "normalizedVersion": "1.2.5"
}`,
		"/mc/1.2.5.json": `{
  "id": "1.2.5",
  "type": "release",
  "mainClass": "net.minecraft.launchwrapper.Launch",
  "libraries": [
    {"name": "net.java.jinput:jinput:2.0.5", "url": "https://libraries.minecraft.net/"},
    {"name": "org.lwjgl.lwjgl:lwjgl:2.9.0", "url": "https://libraries.minecraft.net/"},
    {"name": "org.ow2.asm:asm-all:4.1", "url": "https://libraries.minecraft.net/"}
  ],
  "downloads": {"client": {"sha1": "4a2fac7", "size": 4, "url": "https://piston/client.jar"}},
  "releaseTime": "2012-03-29T22:00:00+00:00"
}`,
		"/mc/1.2.5/client.json": `{"minimumLauncherVersion": 18, "assets": "pre-1.6", "type": "old_release"}`,
		"/mc/1.2.5/extra.json":  `{"minecraftArguments": "${auth_player_name} ${auth_session}", "assetIndex": {"id": "pre-1.6"}}`,

		"/v3/versions/intermediary_generations": `{"latest": 2, "stable": 2}`,
		"/v3/versions/fabric-loader": `[
  {"version": "0.16.0-beta.1", "stable": false},
  {"version": "0.15.11", "stable": true}
]`,
		"/v3/versions/quilt-loader": `[{"version": "0.18.0-beta.2"}, {"version": "0.17.0"}]`,
		"/v3/versions/gen2/intermediary": `[
  {"version": "1.2.5-client", "maven": "net.ornithemc:calamus-intermediary-gen2:1.2.5-client", "stable": true},
  {"version": "1.2.5-server", "maven": "net.ornithemc:calamus-intermediary-gen2:1.2.5-server", "stable": true}
]`,
		"/v3/versions/gen2/fabric-loader/1.2.5-client/0.15.11/profile/json": `{
  "id": "fabric-loader-0.15.11-1.2.5",
  "inheritsFrom": "1.2.5",
  "mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
  "libraries": [
    {"name": "net.fabricmc:intermediary:1.2.5-client", "url": "https://maven.fabricmc.net/"},
    {"name": "net.fabricmc:fabric-loader:0.15.11", "url": "https://maven.fabricmc.net/"},
    {"name": "org.apache.logging.log4j:log4j-core:2.19.0", "url": "https://libraries.minecraft.net/"}
  ]
}`,
		"/v3/versions/gen2/fabric-loader/1.2.5-server/0.15.11/server/json": `{
  "id": "fabric-loader-0.15.11-1.2.5-server",
  "mainClass": "net.fabricmc.loader.impl.launch.knot.KnotServer",
  "libraries": [
    {"name": "net.fabricmc:intermediary:1.2.5-server", "url": "https://maven.fabricmc.net/"},
    {"name": "net.fabricmc:fabric-loader:0.15.11", "url": "https://maven.fabricmc.net/"}
  ]
}`,
		"/v3/versions/gen2/quilt-loader/1.2.5-client/0.17.0/profile/json": `{
  "id": "quilt-loader-0.17.0-1.2.5",
  "inheritsFrom": "1.2.5",
  "mainClass": "org.quiltmc.loader.impl.launch.knot.KnotClient",
  "arguments": {"game": []},
  "libraries": [
    {"name": "org.quiltmc:hashed:1.2.5-client", "url": "https://maven.quiltmc.org/repository/release/"},
    {"name": "org.quiltmc:quilt-loader:0.17.0", "url": "https://maven.quiltmc.org/repository/release/"}
  ]
}`,
	}
}

// MetaServer serves MetaFixtures over HTTP and counts requests per path.
type MetaServer struct {
	URL string

	server *httptest.Server
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   map[string]int
}

func NewMetaServer(t *testing.T) *MetaServer {
	t.Helper()
	s := &MetaServer{
		bodies: MetaFixtures(),
		status: map[string]int{},
		hits:   map[string]int{},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serve))
	s.URL = s.server.URL
	t.Cleanup(s.server.Close)
	return s
}

func (s *MetaServer) ManifestURL() string {
	return s.URL + ManifestPath
}

// SetBody replaces the document served at path.
func (s *MetaServer) SetBody(path string, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[path] = body
}

// SetStatus makes path answer with status and no body.
func (s *MetaServer) SetStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = status
}

func (s *MetaServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *MetaServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, failing := s.status[r.URL.Path]
	body, ok := s.bodies[r.URL.Path]
	s.mu.Unlock()

	if failing {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(strings.ReplaceAll(body, BaseURLPlaceholder, s.URL)))
}
