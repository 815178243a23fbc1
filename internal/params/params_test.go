package params

import (
	"errors"
	"strings"
	"testing"
)

const twoPortDoc = `{
  "$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#",
  "contentVersion": "1.0.0.0",
  "parameters": {
    "clusterName": {"value": "_CLUSTER_NAME_"},
    "location": {"value": "_CLUSTER_LOCATION_"},
    "adminUsername": {"value": "_USER_"},
    "adminPassword": {"value": "_PWD_"},
    "port1": {"value": _PORT1_},
    "port2": {"value": "_PORT2_"}
  }
}`

func testValues(ports ...int) *Values {
	return &Values{
		ClusterName: "partyclub7",
		Location:    "japaneast",
		User:        "admin",
		Password:    `p"a\ss`,
		Ports:       ports,
	}
}

func TestBind_PortsInOrder(t *testing.T) {
	out, err := Bind(twoPortDoc, testValues(80, 443))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	p, err := DecodeParameters(out)
	if err != nil {
		t.Fatalf("DecodeParameters: %v", err)
	}
	value := func(k string) any { return p[k].(map[string]any)["value"] }
	if got := value("port1"); got != float64(80) {
		t.Errorf("port1 = %v, want 80", got)
	}
	if got := value("port2"); got != "443" {
		t.Errorf("port2 = %v, want \"443\"", got)
	}
	if got := value("clusterName"); got != "partyclub7" {
		t.Errorf("clusterName = %v", got)
	}
	if got := value("location"); got != "japaneast" {
		t.Errorf("location = %v", got)
	}
	if got := value("adminPassword"); got != `p"a\ss` {
		t.Errorf("adminPassword = %q, want escaped round trip", got)
	}
	if strings.Contains(out, "_PORT") || strings.Contains(out, "_USER_") {
		t.Errorf("placeholders left in output: %s", out)
	}
}

func TestBind_ZeroPorts(t *testing.T) {
	doc := `{"parameters":{"n":{"value":"_CLUSTER_NAME_"},"l":{"value":"_CLUSTER_LOCATION_"},"u":{"value":"_USER_"},"p":{"value":"_PWD_"}}}`
	out, err := Bind(doc, testValues())
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	want := `{"parameters":{"n":{"value":"partyclub7"},"l":{"value":"japaneast"},"u":{"value":"admin"},"p":{"value":"p\"a\\ss"}}}`
	if out != want {
		t.Errorf("Bind() =\n%s\nwant\n%s", out, want)
	}
}

func TestValidate_Mismatch(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		values  *Values
		problem string
	}{
		{
			name:    "fewer ports than placeholders",
			doc:     twoPortDoc,
			values:  testValues(80),
			problem: "_PORT2_ has no matching port (1 supplied)",
		},
		{
			name:    "more ports than placeholders",
			doc:     twoPortDoc,
			values:  testValues(80, 443, 8080),
			problem: "port 8080 supplied but _PORT3_ not found",
		},
		{
			name:    "gap in numbering",
			doc:     `{"a":"_PORT1_","b":"_PORT3_"}`,
			values:  testValues(80, 443),
			problem: "port 443 supplied but _PORT2_ not found",
		},
		{
			name:    "typo placeholder",
			doc:     `{"a":"_CLUSTR_NAME_"}`,
			values:  testValues(),
			problem: "unknown placeholder _CLUSTR_NAME_",
		},
		{
			name:    "misspelt whole value",
			doc:     `{"a":"_PASSWORD_","b":"Standard_D2_v2"}`,
			values:  testValues(),
			problem: "unknown placeholder _PASSWORD_",
		},
		{
			name:    "port zero",
			doc:     `{"a":"_PORT0_"}`,
			values:  testValues(),
			problem: "unknown placeholder _PORT0_",
		},
		{
			name:    "empty fixed value",
			doc:     `{}`,
			values:  &Values{ClusterName: "c", Location: "l", User: "u"},
			problem: "empty value for _PWD_",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(tt.doc, tt.values)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			found := false
			for _, p := range perr.Problems {
				if p == tt.problem {
					found = true
				}
			}
			if !found {
				t.Errorf("problems %q do not include %q", perr.Problems, tt.problem)
			}
		})
	}
}

func TestBind_OnlyKnownPortTokensAltered(t *testing.T) {
	doc := `{"a":"_PORT1_","b":"Standard_LRS","c":"Standard_D2s_v3","d":"Standard_D2_v2","e":"Standard_DS1_v2","f":"Standard_A1_v2"}`
	out, err := Bind(doc, testValues(20000))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if want := `{"a":"20000","b":"Standard_LRS","c":"Standard_D2s_v3","d":"Standard_D2_v2","e":"Standard_DS1_v2","f":"Standard_A1_v2"}`; out != want {
		t.Errorf("Bind() = %s, want %s", out, want)
	}
}

func TestBind_ServiceFabricNodeSize(t *testing.T) {
	doc := `{"parameters": {
  "clusterName": {"value": "_CLUSTER_NAME_"},
  "clusterLocation": {"value": "_CLUSTER_LOCATION_"},
  "adminUserName": {"value": "_USER_"},
  "adminPassword": {"value": "_PWD_"},
  "loadBalancedAppPort1": {"value": _PORT1_},
  "vmNodeType0Size": {"value": "Standard_D2_v2"}
}}`
	out, err := Bind(doc, testValues(20000))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	p, err := DecodeParameters(out)
	if err != nil {
		t.Fatalf("DecodeParameters: %v", err)
	}
	if got := p["vmNodeType0Size"].(map[string]any)["value"]; got != "Standard_D2_v2" {
		t.Errorf("vmNodeType0Size = %v", got)
	}
	if got := p["loadBalancedAppPort1"].(map[string]any)["value"]; got != float64(20000) {
		t.Errorf("loadBalancedAppPort1 = %v", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders(`"_USER_" "_PORT2_" "_PORT1_" "_USER_"`)
	want := []string{"_PORT1_", "_PORT2_", "_USER_"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Placeholders() = %v, want %v", got, want)
	}
}

func TestDecode(t *testing.T) {
	p, err := DecodeParameters(`{"x":{"value":1}}`)
	if err != nil || p["x"] == nil {
		t.Errorf("bare parameter object: %v %v", p, err)
	}
	if _, err := DecodeParameters(`{`); err == nil {
		t.Errorf("expected decode error")
	}
	if _, err := DecodeTemplate(`null`); err == nil {
		t.Errorf("expected error for null template")
	}
	tpl, err := DecodeTemplate(`{"resources":[]}`)
	if err != nil || tpl["resources"] == nil {
		t.Errorf("DecodeTemplate: %v %v", tpl, err)
	}
}
