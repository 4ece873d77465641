package todoman_test

import (
	"os"
	"strings"
	"testing"
)

func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

func TestDockerfileMultiStageBuild(t *testing.T) {
	content := readFile(t, "Dockerfile")

	// マルチステージビルドの確認: ビルドステージと実行ステージが存在すること
	if !strings.Contains(content, "FROM golang:") {
		t.Error("Dockerfile should contain a Go builder stage (FROM golang:)")
	}

	// 最終ステージは軽量イメージであること
	var lastFrom string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "FROM ") {
			lastFrom = trimmed
		}
	}
	if !strings.Contains(lastFrom, "gcr.io/distroless") && !strings.Contains(lastFrom, "alpine") && !strings.Contains(lastFrom, "scratch") {
		t.Errorf("final stage should use a minimal base image (distroless/alpine/scratch), got: %s", lastFrom)
	}
}

func TestDockerfileBuildsTodomanBinary(t *testing.T) {
	content := readFile(t, "Dockerfile")

	if !strings.Contains(content, "./cmd/todoman") {
		t.Error("Dockerfile should build ./cmd/todoman")
	}
	if !strings.Contains(content, "ENTRYPOINT") {
		t.Error("Dockerfile should contain ENTRYPOINT")
	}
	// distrolessにはシェルが無いため、ヘルスチェックはサブコマンドで行う
	if !strings.Contains(content, `"healthcheck"`) {
		t.Error("Dockerfile HEALTHCHECK should use the healthcheck subcommand")
	}
}

func TestDockerComposeServices(t *testing.T) {
	content := readFile(t, "docker-compose.yml")

	for _, svc := range []string{"api:", "migrate:", "db:", "redis:"} {
		if !strings.Contains(content, svc) {
			t.Errorf("docker-compose.yml should contain service %q", svc)
		}
	}
}

func TestDockerComposeImages(t *testing.T) {
	content := readFile(t, "docker-compose.yml")

	// gen_random_uuid()を標準で使えるPostgreSQL 13以降であること
	if !strings.Contains(content, "postgres:16") {
		t.Error("docker-compose.yml should use the postgres:16 image")
	}
	if !strings.Contains(content, "redis:") {
		t.Error("docker-compose.yml should use a Redis image")
	}
}

func TestDockerComposeNetworks(t *testing.T) {
	content := readFile(t, "docker-compose.yml")

	if !strings.Contains(content, "networks:") {
		t.Error("docker-compose.yml should define networks")
	}
	// DBとRedisは外部から到達できない内部ネットワークに置く
	if !strings.Contains(content, "internal: true") {
		t.Error("docker-compose.yml should define an internal network (internal: true)")
	}
}

func TestDockerComposeRequiresJWTSecret(t *testing.T) {
	content := readFile(t, "docker-compose.yml")

	if !strings.Contains(content, "JWT_SECRET_KEY: ${JWT_SECRET_KEY:?") {
		t.Error("docker-compose.yml should require JWT_SECRET_KEY from the environment")
	}
}
