package eth

// RewardContractABI covers the subset of the deployed reward contract used by
// the backend: three owner-authorized writes and three public reads.
const RewardContractABI = `[
  {
    "name": "register_user",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "user", "type": "address"},
      {"name": "username", "type": "string"}
    ],
    "outputs": []
  },
  {
    "name": "submit_cid",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "user", "type": "address"},
      {"name": "cid", "type": "string"}
    ],
    "outputs": []
  },
  {
    "name": "announce_winner",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "winner", "type": "address"}
    ],
    "outputs": []
  },
  {
    "name": "userToName",
    "type": "function",
    "stateMutability": "view",
    "inputs": [
      {"name": "user", "type": "address"}
    ],
    "outputs": [
      {"name": "", "type": "string"}
    ]
  },
  {
    "name": "isPostSubmitted",
    "type": "function",
    "stateMutability": "view",
    "inputs": [
      {"name": "user", "type": "address"}
    ],
    "outputs": [
      {"name": "", "type": "bool"}
    ]
  },
  {
    "name": "getSubmittedCids",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [
      {"name": "users", "type": "address[]"},
      {"name": "cids", "type": "string[]"}
    ]
  }
]`
