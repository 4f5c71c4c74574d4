package token

import (
	"testing"
	"time"

	"github.com/emerald/devdash/internal/model"
)

const testSecret = "test-shared-secret"

func testIdentity() *model.TelegramIdentity {
	return &model.TelegramIdentity{
		ID:        42,
		Username:  "alice",
		FirstName: "Alice",
	}
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret, 604800)
	verifier := NewVerifier(testSecret)

	tok, err := issuer.Issue(testIdentity(), "dev", "pro")
	if err != nil {
		t.Fatalf("Issue() がエラーを返した: %v", err)
	}

	claims, err := verifier.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() がエラーを返した: %v", err)
	}

	if claims.Subject != "42" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "42")
	}
	if claims.Identity.Username != "alice" {
		t.Errorf("Identity.Username = %q, want %q", claims.Identity.Username, "alice")
	}
	if claims.Role != "dev" {
		t.Errorf("Role = %q, want %q", claims.Role, "dev")
	}
	if claims.Tier != "pro" {
		t.Errorf("Tier = %q, want %q", claims.Tier, "pro")
	}

	id, err := claims.SubjectID()
	if err != nil {
		t.Fatalf("SubjectID() がエラーを返した: %v", err)
	}
	if id != 42 {
		t.Errorf("SubjectID() = %d, want 42", id)
	}
}

func TestIssue_ExpirationIsIssuedAtPlusTTL(t *testing.T) {
	issued := time.Unix(1700000000, 0)

	issuer := NewIssuer(testSecret, 604800)
	issuer.now = func() time.Time { return issued }

	verifier := NewVerifier(testSecret)
	verifier.now = func() time.Time { return issued.Add(time.Minute) }

	tok, err := issuer.Issue(testIdentity(), "dev", "pro")
	if err != nil {
		t.Fatalf("Issue() がエラーを返した: %v", err)
	}

	claims, err := verifier.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() がエラーを返した: %v", err)
	}

	if got := claims.IssuedAt.Unix(); got != 1700000000 {
		t.Errorf("iat = %d, want 1700000000", got)
	}
	if got := claims.ExpiresAt.Unix(); got != 1700000000+604800 {
		t.Errorf("exp = %d, want %d", got, 1700000000+604800)
	}
}

func TestVerify_RepeatedVerificationIsIdempotent(t *testing.T) {
	issuer := NewIssuer(testSecret, 604800)
	verifier := NewVerifier(testSecret)

	tok, err := issuer.Issue(testIdentity(), "dev", "pro")
	if err != nil {
		t.Fatalf("Issue() がエラーを返した: %v", err)
	}

	// トークンはステートレスなので何度検証しても結果は変わらない
	for i := 0; i < 3; i++ {
		if _, err := verifier.Verify(tok); err != nil {
			t.Fatalf("%d回目のVerify() がエラーを返した: %v", i+1, err)
		}
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	issued := time.Unix(1700000000, 0)

	issuer := NewIssuer(testSecret, 1)
	issuer.now = func() time.Time { return issued }

	verifier := NewVerifier(testSecret)
	verifier.now = func() time.Time { return issued.Add(2 * time.Second) }

	tok, err := issuer.Issue(testIdentity(), "dev", "pro")
	if err != nil {
		t.Fatalf("Issue() がエラーを返した: %v", err)
	}

	_, err = verifier.Verify(tok)
	assertTokenErrorKind(t, err, KindExpired)
}

func TestVerify_TamperedToken(t *testing.T) {
	issuer := NewIssuer(testSecret, 604800)
	verifier := NewVerifier(testSecret)

	tok, err := issuer.Issue(testIdentity(), "dev", "pro")
	if err != nil {
		t.Fatalf("Issue() がエラーを返した: %v", err)
	}

	tampered := tok[:len(tok)-2] + "xx"

	_, err = verifier.Verify(tampered)
	assertTokenErrorKind(t, err, KindInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewIssuer(testSecret, 604800)
	verifier := NewVerifier("another-secret")

	tok, err := issuer.Issue(testIdentity(), "dev", "pro")
	if err != nil {
		t.Fatalf("Issue() がエラーを返した: %v", err)
	}

	_, err = verifier.Verify(tok)
	assertTokenErrorKind(t, err, KindInvalidToken)
}

func TestVerify_GarbageInput(t *testing.T) {
	verifier := NewVerifier(testSecret)

	for _, input := range []string{"", "abc", "a.b.c", "ヘッダーではない"} {
		if _, err := verifier.Verify(input); err == nil {
			t.Errorf("不正な入力 %q が受理された", input)
		}
	}
}

func TestIssue_MissingSecret(t *testing.T) {
	issuer := NewIssuer("", 604800)

	_, err := issuer.Issue(testIdentity(), "dev", "pro")
	assertTokenErrorKind(t, err, KindConfigMissing)
}

func assertTokenErrorKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatal("エラーが返されなかった")
	}
	terr, ok := err.(*Error)
	if !ok {
		t.Fatalf("エラーの型が *Error ではない: %T", err)
	}
	if terr.Kind != want {
		t.Errorf("Kind = %d, want %d (message: %s)", terr.Kind, want, terr.Message)
	}
}
