package services

// Services defined in this package:
// - AuthService: staff login and profile
// - UserService: staff account administration
// - StudentService: roster management and badge issuance
// - ScanService: checkpoint verification policy and access logs
// - DashboardService: aggregate numbers for the admin dashboard
