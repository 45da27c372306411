package costume

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	POSTRaw(path, body string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers costume lookup and removal steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &costumeSteps{tc: tc}

	ctx.Step(`^I look up costume "([^"]*)" as "([^"]*)" "([^"]*)"$`, steps.lookUp)
	ctx.Step(`^I remove costume "([^"]*)" as "([^"]*)" "([^"]*)"$`, steps.remove)
	ctx.Step(`^I look up costume "([^"]*)" with body '([^']*)'$`, steps.lookUpWithBody)
	ctx.Step(`^I remember the response$`, steps.rememberResponse)
	ctx.Step(`^the response should equal the remembered response$`, steps.responseShouldEqualRemembered)
	ctx.Step(`^the costume owner should be "([^"]*)" "([^"]*)"$`, steps.ownerShouldBe)
}

type costumeSteps struct {
	tc               TestContext
	rememberedStatus int
	rememberedCode   string
}

func claim(first, last string) map[string]string {
	return map[string]string{"owner_first_name": first, "owner_last_name": last}
}

func (s *costumeSteps) lookUp(ctx context.Context, id, first, last string) error {
	return s.tc.POST("/costumes/"+id+"/lookup", claim(first, last))
}

func (s *costumeSteps) remove(ctx context.Context, id, first, last string) error {
	return s.tc.POST("/costumes/"+id+"/remove", claim(first, last))
}

func (s *costumeSteps) lookUpWithBody(ctx context.Context, id, body string) error {
	return s.tc.POSTRaw("/costumes/"+id+"/lookup", body)
}

func (s *costumeSteps) rememberResponse(ctx context.Context) error {
	code, err := errorCode(s.tc.GetLastResponseBody())
	if err != nil {
		return err
	}
	s.rememberedStatus, s.rememberedCode = s.tc.GetLastResponseStatus(), code
	return nil
}

// responseShouldEqualRemembered compares status and error code; the message
// differs only by the costume id that the caller supplied.
func (s *costumeSteps) responseShouldEqualRemembered(ctx context.Context) error {
	code, err := errorCode(s.tc.GetLastResponseBody())
	if err != nil {
		return err
	}
	status := s.tc.GetLastResponseStatus()
	if status != s.rememberedStatus || code != s.rememberedCode {
		return fmt.Errorf("expected %d %q but got %d %q", s.rememberedStatus, s.rememberedCode, status, code)
	}
	return nil
}

func errorCode(body []byte) (string, error) {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("response is not JSON: %w", err)
	}
	return env.Error, nil
}

func (s *costumeSteps) ownerShouldBe(ctx context.Context, first, last string) error {
	var body struct {
		Owner struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"owner"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if body.Owner.FirstName != first || body.Owner.LastName != last {
		return fmt.Errorf("expected owner %s %s but got %s %s", first, last, body.Owner.FirstName, body.Owner.LastName)
	}
	return nil
}
