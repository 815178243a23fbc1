package inmem_test

import (
	"context"
	"errors"
	"testing"
	"time"

	providerdrv "github.com/kompox/tmpcluster/adapters/drivers/provider"
	"github.com/kompox/tmpcluster/adapters/drivers/provider/inmem"
	"github.com/kompox/tmpcluster/adapters/store/snapshot"
	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/retry"
	"github.com/kompox/tmpcluster/usecase/cluster"
)

const (
	testTemplate   = `{"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#", "resources": []}`
	testParameters = `{
  "parameters": {
    "clusterName": {"value": "_CLUSTER_NAME_"},
    "location": {"value": "_CLUSTER_LOCATION_"},
    "adminUsername": {"value": "_USER_"},
    "adminPassword": {"value": "_PWD_"},
    "gamePort": {"value": _PORT1_},
    "queryPort": {"value": _PORT2_}
  }
}`
)

func newUseCase(t *testing.T, cloud *inmem.Cloud) *cluster.UseCase {
	t.Helper()
	settings, err := model.NewOperatorSettings(map[string]string{
		model.SettingRegion:         "japaneast",
		model.SettingClientID:       "client",
		model.SettingClientSecret:   "secret",
		model.SettingAuthority:      "https://login.microsoftonline.com/tenant",
		model.SettingSubscriptionID: "sub",
		model.SettingUsername:       "admin",
		model.SettingPassword:       "P@ssw0rd",
	})
	if err != nil {
		t.Fatal(err)
	}
	store := snapshot.NewStore(nil)
	store.Replace(settings, &model.TemplateBundle{Template: testTemplate, Parameters: testParameters})
	return &cluster.UseCase{
		Snapshots:  store,
		TokenPort:  cloud,
		RemotePort: cloud,
		Retry:      retry.Policy{Attempts: 1, Delay: time.Millisecond},
	}
}

func status(t *testing.T, uc *cluster.UseCase, name string) model.ClusterOperationStatus {
	t.Helper()
	out, err := uc.Status(context.Background(), &cluster.StatusInput{Name: name})
	if err != nil {
		t.Fatalf("Status(%s): %v", name, err)
	}
	return out.Status
}

func TestPartyclubLifecycle(t *testing.T) {
	ctx := context.Background()
	cloud := inmem.NewCloud(false)
	uc := newUseCase(t, cloud)

	if got := status(t, uc, "partyclub7"); got != model.ClusterNotFound {
		t.Fatalf("initial status = %s, want ClusterNotFound", got)
	}

	out, err := uc.Create(ctx, &cluster.CreateInput{Name: "partyclub7", Ports: []int{20000, 20001}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if out.FQDN != "partyclub7.japaneast.cloudapp.azure.com" {
		t.Errorf("FQDN = %q", out.FQDN)
	}
	if out.ResourceGroup != "partyclub7" || out.Deployment != "partyclub7dp" {
		t.Errorf("names = %s/%s", out.ResourceGroup, out.Deployment)
	}

	spec, ok := cloud.Deployment("partyclub7", "partyclub7dp")
	if !ok {
		t.Fatal("deployment not submitted")
	}
	if spec.Mode != model.DeploymentModeIncremental {
		t.Errorf("mode = %s", spec.Mode)
	}
	value := func(k string) any { return spec.Parameters[k].(map[string]any)["value"] }
	if value("gamePort") != float64(20000) || value("queryPort") != float64(20001) {
		t.Errorf("ports bound as %v, %v", value("gamePort"), value("queryPort"))
	}
	if value("clusterName") != "partyclub7" || value("location") != "japaneast" || value("adminPassword") != "P@ssw0rd" {
		t.Errorf("fixed values bound as %v", spec.Parameters)
	}

	if got := status(t, uc, "partyclub7"); got != model.ClusterCreating {
		t.Errorf("accepted status = %s, want Creating", got)
	}
	cloud.Advance()
	if got := status(t, uc, "partyclub7"); got != model.ClusterCreating {
		t.Errorf("running status = %s, want Creating", got)
	}
	cloud.Advance()
	if got := status(t, uc, "partyclub7"); got != model.ClusterReady {
		t.Errorf("succeeded status = %s, want Ready", got)
	}

	if _, err := uc.Delete(ctx, &cluster.DeleteInput{Name: "partyclub7"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := status(t, uc, "partyclub7"); got != model.ClusterDeleting {
		t.Errorf("deleting status = %s, want Deleting", got)
	}
	cloud.Advance()
	if got := status(t, uc, "partyclub7"); got != model.ClusterNotFound {
		t.Errorf("deleted status = %s, want ClusterNotFound", got)
	}
	if cloud.Tokens() != 8 {
		t.Errorf("tokens issued = %d, want one per operation (8)", cloud.Tokens())
	}
}

func TestCreateTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	cloud := inmem.NewCloud(false)
	uc := newUseCase(t, cloud)

	in := &cluster.CreateInput{Name: "partyclub7", Ports: []int{20000, 20001}}
	if _, err := uc.Create(ctx, in); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := uc.Create(ctx, in)
	if !errors.Is(err, model.ErrNameConflict) {
		t.Fatalf("second Create err = %v, want ErrNameConflict", err)
	}
	if n := cloud.Submissions(); n != 1 {
		t.Errorf("submissions = %d, want 1", n)
	}
}

func TestFailedDeployment(t *testing.T) {
	ctx := context.Background()
	cloud := inmem.NewCloud(true)
	uc := newUseCase(t, cloud)

	cloud.FailDeployment("partyclub8")
	if _, err := uc.Create(ctx, &cluster.CreateInput{Name: "partyclub8", Ports: []int{1, 2}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	var statuses []model.ClusterOperationStatus
	watch, err := uc.Watch(ctx, &cluster.WatchInput{
		Name:     "partyclub8",
		Interval: time.Millisecond,
		OnChange: func(o *cluster.StatusOutput) { statuses = append(statuses, o.Status) },
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if watch.Last.Status != model.ClusterCreateFailed {
		t.Errorf("final status = %s, want CreateFailed", watch.Last.Status)
	}
	if len(statuses) != 2 || statuses[0] != model.ClusterCreating {
		t.Errorf("observed changes %v", statuses)
	}
}

func TestAuthFailureAborts(t *testing.T) {
	cloud := inmem.NewCloud(false)
	uc := newUseCase(t, cloud)
	cloud.SetAuthFailure(true)

	_, err := uc.Create(context.Background(), &cluster.CreateInput{Name: "partyclub7", Ports: []int{20000, 20001}})
	if !errors.Is(err, model.ErrAuthFailure) {
		t.Fatalf("err = %v, want ErrAuthFailure", err)
	}
	if _, ok := cloud.Deployment("partyclub7", "partyclub7dp"); ok {
		t.Error("deployment submitted despite auth failure")
	}
}

func TestResourceGroupFailedDominates(t *testing.T) {
	cloud := inmem.NewCloud(false)
	uc := newUseCase(t, cloud)
	if _, err := uc.Create(context.Background(), &cluster.CreateInput{Name: "partyclub7", Ports: []int{20000, 20001}}); err != nil {
		t.Fatal(err)
	}
	cloud.Advance()
	cloud.Advance()
	if err := cloud.SetResourceGroupState("partyclub7", inmem.StateFailed); err != nil {
		t.Fatal(err)
	}
	if got := status(t, uc, "partyclub7"); got != model.ClusterDeleteFailed {
		t.Errorf("status = %s, want DeleteFailed", got)
	}
}

func TestRegisteredDriver(t *testing.T) {
	d, err := providerdrv.New(inmem.DriverName, map[string]string{inmem.OptionAdvanceOnRead: "true"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.ID() != inmem.DriverName {
		t.Errorf("ID = %s", d.ID())
	}
	cloud, ok := inmem.CloudOf(d)
	if !ok || cloud == nil {
		t.Fatal("CloudOf failed")
	}
	if _, err := providerdrv.New(inmem.DriverName, map[string]string{inmem.OptionAdvanceOnRead: "maybe"}); err == nil {
		t.Error("expected error for invalid option")
	}
}
