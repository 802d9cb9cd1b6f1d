package authenticator

// TokenEngine issues and checks session tokens carrying a payload of type T.
type TokenEngine[T any] interface {
	Generate(sub string, session T) (string, error)
	Verify(token string) (T, error)
}
