package datasource

import "fmt"

// ValidateParams runs the pre-flight checks for params. It never panics; every
// failure is reported as (false, reason).
func ValidateParams(f DialectFactory, params ConnectionParams) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			ok, msg = false, fmt.Sprintf("validation failed: %v", r)
		}
	}()

	if params.Port != nil && *params.Port < 0 {
		return false, fmt.Sprintf("invalid port: %d", *params.Port)
	}

	d, err := f.Resolve(params.DBType)
	if err != nil {
		if params.ConnectionString == "" &&
			(params.Host == "" || params.Database == "" || params.Username == "") {
			return false, fmt.Sprintf("%s database requires host, database name and username", params.DBType)
		}
		return true, ""
	}

	if err := d.Validate(params); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// ValidateNetworkParams checks the discrete fields required by server dialects
// when no raw connection string is given. An empty password is accepted; a
// missing one is not.
func ValidateNetworkParams(params ConnectionParams) error {
	if params.ConnectionString != "" {
		return nil
	}
	switch {
	case params.Host == "":
		return Invalid("host is required")
	case params.Database == "":
		return Invalid("database name is required")
	case params.Username == "":
		return Invalid("username is required")
	case params.Password == nil:
		return Invalid("password is required")
	}
	return nil
}
