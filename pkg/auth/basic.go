package auth

func BuildBasic(cred Credential) string {
	return "Basic " + B64(cred.Username, cred.Password)
}
