package one

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// rpcServer answers every call with the given response array elements.
func rpcServer(t *testing.T, values ...string) (*httptest.Server, *[]string) {
	t.Helper()
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		w.Header().Set("Content-Type", "text/xml")
		var data strings.Builder
		for _, v := range values {
			data.WriteString("<value>" + v + "</value>")
		}
		fmt.Fprintf(w, `<?xml version="1.0"?><methodResponse><params><param><value><array><data>%s</data></array></value></param></params></methodResponse>`, data.String())
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

type recordingObserver struct {
	methods []string
	errs    []error
}

func (o *recordingObserver) ObserveCall(method string, _ time.Duration, err error) {
	o.methods = append(o.methods, method)
	o.errs = append(o.errs, err)
}

func TestClient_CreateGroup(t *testing.T) {
	srv, bodies := rpcServer(t, "<boolean>1</boolean>", "<i4>101</i4>", "<i4>0</i4>")
	c, err := Connect(srv.URL, "oneadmin", "secret", time.Second)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	obs := &recordingObserver{}
	c.SetObserver(obs)

	id, err := c.CreateGroup("acme")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if id != 101 {
		t.Errorf("id = %d, want 101", id)
	}
	if len(*bodies) != 1 || !strings.Contains((*bodies)[0], "one.group.allocate") {
		t.Fatalf("unexpected request bodies: %v", *bodies)
	}
	if !strings.Contains((*bodies)[0], "oneadmin:secret") {
		t.Error("session string missing from request")
	}
	if len(obs.methods) != 1 || obs.methods[0] != "one.group.allocate" || obs.errs[0] != nil {
		t.Errorf("observer saw %v / %v", obs.methods, obs.errs)
	}
}

func TestClient_ErrorResponse(t *testing.T) {
	srv, _ := rpcServer(t, "<boolean>0</boolean>", "<string>[one.group.allocate] NAME is already taken by GROUP 101.</string>", "<i4>16384</i4>")
	c, err := Connect(srv.URL, "oneadmin", "secret", time.Second)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	_, err = c.CreateGroup("acme")
	if !IsNameTaken(err) {
		t.Fatalf("expected name-taken error, got %v", err)
	}
}

func TestClient_GroupInfo(t *testing.T) {
	escaped := strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(groupWithQuotaXML)
	srv, _ := rpcServer(t, "<boolean>1</boolean>", "<string>"+escaped+"</string>", "<i4>0</i4>")
	c, err := Connect(srv.URL, "oneadmin", "secret", time.Second)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	g, err := c.GroupInfo(101)
	if err != nil {
		t.Fatalf("GroupInfo failed: %v", err)
	}
	if g.Name != "acme" || g.Quota.VM == nil {
		t.Errorf("unexpected group %+v", g)
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{}
	if err := c.Ping(); err == nil {
		t.Fatal("expected error from closed client")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on closed client: %v", err)
	}
}

func TestConnect_EmptyEndpoint(t *testing.T) {
	if _, err := Connect("", "u", "p", 0); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
