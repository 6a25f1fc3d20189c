package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/shopspring/decimal"
)

// Regression: any number of concurrent deliveries for the same payment must
// settle the contribution once and derive exactly one income ledger row.
func TestApplyContributionPaymentStatus_ConcurrentDeliveriesDeriveOneIncomeRow(t *testing.T) {
	setupIntegrationEnv(t)
	ctx := context.Background()

	member, err := CreateMember(ctx, &NewMember{FirstName: "Jan", LastName: "Jansen"})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	contribution, err := CreateContribution(ctx, &NewContribution{
		MemberId: member.ID,
		Year:     2026,
		Amount:   decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("CreateContribution: %v", err)
	}

	paidAt := time.Now()
	const deliveries = 8
	errs := make(chan error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ApplyContributionPaymentStatus(ctx, contribution.ID, PaymentStatusPaid, paidAt)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("ApplyContributionPaymentStatus: %v", err)
		}
	}

	refreshed, err := GetContribution(ctx, contribution.ID)
	if err != nil {
		t.Fatalf("GetContribution: %v", err)
	}
	if refreshed.Status != PaymentStatusPaid {
		t.Fatalf("expected status Paid; got %s", refreshed.Status)
	}
	if refreshed.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&Income{}).
		Where("source_type = ? AND source_id = ?", LedgerSourceContribution, contribution.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count income rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 derived income row; got %d", count)
	}
}

// Regression: a settled contribution never leaves its terminal state, even
// when a later delivery reports failed, and the income row stays unique.
func TestApplyContributionPaymentStatus_TerminalStateIsMonotonic(t *testing.T) {
	setupIntegrationEnv(t)
	ctx := context.Background()

	member, err := CreateMember(ctx, &NewMember{FirstName: "Piet", LastName: "Pietersen"})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	contribution, err := CreateContribution(ctx, &NewContribution{
		MemberId: member.ID,
		Year:     2026,
		Amount:   decimal.NewFromInt(35),
	})
	if err != nil {
		t.Fatalf("CreateContribution: %v", err)
	}

	if _, err := MarkContributionPaid(ctx, contribution.ID); err != nil {
		t.Fatalf("MarkContributionPaid: %v", err)
	}
	// a late "failed" delivery for the same payment must be a no-op
	if err := ApplyContributionPaymentStatus(ctx, contribution.ID, PaymentStatusFailed, time.Now()); err != nil {
		t.Fatalf("ApplyContributionPaymentStatus(failed): %v", err)
	}

	refreshed, err := GetContribution(ctx, contribution.ID)
	if err != nil {
		t.Fatalf("GetContribution: %v", err)
	}
	if refreshed.Status != PaymentStatusPaid {
		t.Fatalf("expected status to stay Paid; got %s", refreshed.Status)
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&Income{}).
		Where("source_type = ? AND source_id = ?", LedgerSourceContribution, contribution.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count income rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 derived income row; got %d", count)
	}

	// unknown payment ids map to the not-found sentinel
	if _, err := GetContributionByPaymentId(ctx, "tr_unknown"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound for unknown payment id; got %v", err)
	}
}

func setupIntegrationEnv(t *testing.T) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "leden_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	MigrateTable()
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("leden-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("leden-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=leden_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
