package rewards

const ServiceName = "linkedpost-rewards"

const (
	Env_ChainId             = "CHAIN_ID"
	Env_ContractAddress     = "REWARD_CONTRACT_ADDRESS"
	Env_Env                 = "ENV"
	Env_EthRpcUrl           = "ETH_RPC_URL"
	Env_GeminiApiKey        = "GEMINI_API_KEY"
	Env_GeminiModel         = "GEMINI_MODEL"
	Env_IpfsAddress         = "IPFS_MULTIADDRESS"
	Env_LedgerWaitForTx     = "LEDGER_WAIT_FOR_RECEIPT"
	Env_ListenAddress       = "LISTEN_ADDRESS"
	Env_LogLevel            = "LOG_LEVEL"
	Env_MatchRatioThreshold = "MATCH_RATIO_THRESHOLD"
	Env_MetricsEndpoint     = "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"
	Env_OwnerPrivateKey     = "OWNER_PRIVATE_KEY"
)
