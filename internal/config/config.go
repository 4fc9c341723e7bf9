package config

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
	}
	Setu struct {
		BaseURL             string
		ClientID            string
		ClientSecret        string
		PanInstanceID       string
		PennyDropInstanceID string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Admin struct {
		Username string
		Email    string
		Password string
	}
	RedisServer  string
	KafkaServers string
}
