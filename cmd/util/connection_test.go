package util

import "testing"

func TestBuildDSNIncludesAllSetFields(t *testing.T) {
	dsn := BuildDSN(&ConnectionConfig{
		Host: "db.internal", Port: 5432, Database: "app", User: "app_user",
		Password: "secret", SSLMode: "require", ApplicationName: "declpg",
	})
	want := "host=db.internal port=5432 dbname=app user=app_user password=secret sslmode=require application_name=declpg"
	if dsn != want {
		t.Fatalf("BuildDSN() = %q, want %q", dsn, want)
	}
}

func TestBuildDSNOmitsUnsetOptionalFields(t *testing.T) {
	dsn := BuildDSN(&ConnectionConfig{Host: "localhost", Port: 5432, Database: "app", User: "app_user"})
	want := "host=localhost port=5432 dbname=app user=app_user"
	if dsn != want {
		t.Fatalf("BuildDSN() = %q, want %q", dsn, want)
	}
}

func TestConnectUnknownDriverReturnsError(t *testing.T) {
	_, err := Connect(&ConnectionConfig{Host: "localhost", Port: 5432, Database: "app", User: "app_user", Driver: "not-a-real-driver"})
	if err == nil {
		t.Fatal("expected an error for an unregistered database/sql driver name")
	}
}
