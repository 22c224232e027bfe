package mysql

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/config"
)

// DefaultPort is the MySQL server port used when none is configured.
const DefaultPort = 3306

// DriverDSN converts a connection string into a go-sql-driver DSN.
// Both mysql:// URIs (including mysql+driver:// variants) and native
// user:pass@tcp(host:port)/db DSNs are accepted.
func DriverDSN(uri string, timeout time.Duration) (string, error) {
	if !strings.Contains(uri, "://") {
		cfg, err := gomysql.ParseDSN(uri)
		if err != nil {
			return "", &datasource.ConfigurationError{Msg: "invalid MySQL connection string: " + err.Error(), Err: err}
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = timeout
		}
		return cfg.FormatDSN(), nil
	}

	target, err := datasource.ParseNetworkURI(uri, DefaultPort, "mysql", "mariadb")
	if err != nil {
		return "", err
	}

	cfg := gomysql.NewConfig()
	cfg.User = target.Username
	cfg.Passwd = target.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.ResolveHostForDocker(target.Host), strconv.Itoa(target.Port))
	cfg.DBName = target.Database
	cfg.Timeout = timeout

	opts, err := driverOptions(target.Query)
	if err != nil {
		return "", err
	}
	if len(opts) == 0 {
		return cfg.FormatDSN(), nil
	}
	// Appended options win over the defaults above when ParseDSN re-reads them.
	base := cfg.FormatDSN()
	sep := "?"
	if strings.Contains(base[strings.LastIndex(base, "/"):], "?") {
		sep = "&"
	}
	withOpts, err := gomysql.ParseDSN(base + sep + opts.Encode())
	if err != nil {
		return "", &datasource.ConfigurationError{Msg: "invalid MySQL connection option: " + err.Error(), Err: err}
	}
	return withOpts.FormatDSN(), nil
}

// nativeOptions are go-sql-driver DSN parameters accepted verbatim from a URI.
// Other keys would be sent to the server as session variables, so they are dropped.
var nativeOptions = map[string]bool{
	"charset": true, "collation": true, "tls": true, "parseTime": true, "loc": true,
	"timeout": true, "readTimeout": true, "writeTimeout": true,
	"allowNativePasswords": true, "allowCleartextPasswords": true,
}

// driverOptions maps URI query options, including the PyMySQL spellings
// ssl, ssl_mode and *_timeout in seconds, to go-sql-driver parameters.
func driverOptions(q url.Values) (url.Values, error) {
	out := url.Values{}
	for key, values := range q {
		if len(values) == 0 {
			continue
		}
		v := values[len(values)-1]
		switch strings.ToLower(key) {
		case "ssl", "ssl_mode", "sslmode":
			out.Set("tls", tlsMode(v))
		case "connect_timeout":
			out.Set("timeout", v+"s")
		case "read_timeout":
			out.Set("readTimeout", v+"s")
		case "write_timeout":
			out.Set("writeTimeout", v+"s")
		default:
			if nativeOptions[key] {
				out.Set(key, v)
			}
		}
	}
	for _, key := range []string{"timeout", "readTimeout", "writeTimeout"} {
		if v := out.Get(key); v != "" {
			if _, err := time.ParseDuration(v); err != nil {
				return nil, datasource.NewConfigurationError("invalid MySQL %s %q", key, v)
			}
		}
	}
	return out, nil
}

func tlsMode(v string) string {
	switch strings.ToLower(v) {
	case "", "0", "false", "disabled", "disable":
		return "false"
	case "preferred", "prefer":
		return "preferred"
	case "skip-verify":
		return "skip-verify"
	default:
		return "true"
	}
}
